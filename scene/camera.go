package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective view camera. Position may be written directly
// (debug slider, shake); the view matrix is derived on every call.
type Camera struct {
	Position    mgl32.Vec3
	Rotation    mgl32.Quat // camera-to-world; identity looks down -Z
	FOV         float32    // vertical field of view in degrees
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	projectionMatrix mgl32.Mat4
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := &Camera{
		Rotation:    mgl32.QuatIdent(),
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
	}
	c.UpdateProjectionMatrix()
	return c
}

// SetAspect recomputes the aspect ratio from a surface size.
func (c *Camera) SetAspect(width, height int) {
	if height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
	c.UpdateProjectionMatrix()
}

// UpdateProjectionMatrix must be called after FOV, aspect or planes change.
func (c *Camera) UpdateProjectionMatrix() {
	c.projectionMatrix = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
}

// LookAt turns the camera to face target with world +Y as up.
func (c *Camera) LookAt(target mgl32.Vec3) {
	forward := target.Sub(c.Position)
	if forward.Len() < 1e-6 {
		return
	}
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(forward.Normalize().Dot(up)) > 0.9999 {
		up = mgl32.Vec3{0, 0, -1}
	}
	view := mgl32.LookAtV(c.Position, target, up)
	c.Rotation = mgl32.Mat4ToQuat(view).Conjugate().Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	rotation := c.Rotation.Conjugate().Mat4()
	translation := mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), -c.Position.Z())
	return rotation.Mul4(translation)
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix
}

func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	return c.projectionMatrix.Mul4(c.ViewMatrix())
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) Up() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

// OrbitControls rotates and zooms a camera around Target in response to
// pointer drags and wheel steps. The spherical state is re-derived from the
// camera position on every gesture, so other writers to Position are kept.
type OrbitControls struct {
	Camera      *Camera
	Target      mgl32.Vec3
	Enabled     bool
	RotateSpeed float32 // radians per pixel of drag
	ZoomSpeed   float32 // fraction of the distance per wheel step
	MinDistance float32
	MaxDistance float32

	dragging     bool
	lastX, lastY float64
}

func NewOrbitControls(camera *Camera, target mgl32.Vec3) *OrbitControls {
	return &OrbitControls{
		Camera:      camera,
		Target:      target,
		Enabled:     true,
		RotateSpeed: 0.005,
		ZoomSpeed:   0.05,
		MinDistance: 0.1,
		MaxDistance: 900,
	}
}

func (o *OrbitControls) Dragging() bool { return o.dragging }

func (o *OrbitControls) BeginDrag(x, y float64) {
	o.dragging = true
	o.lastX, o.lastY = x, y
}

func (o *OrbitControls) EndDrag() {
	o.dragging = false
}

// Drag orbits by the pointer delta since the previous Drag or BeginDrag.
func (o *OrbitControls) Drag(x, y float64) {
	if !o.dragging {
		return
	}
	dx := float32(x - o.lastX)
	dy := float32(y - o.lastY)
	o.lastX, o.lastY = x, y
	if !o.Enabled {
		return
	}
	o.Orbit(-dx*o.RotateSpeed, -dy*o.RotateSpeed)
}

// Orbit adds deltaAzimuth around +Y and deltaPolar towards the poles.
func (o *OrbitControls) Orbit(deltaAzimuth, deltaPolar float32) {
	radius, azimuth, polar := o.spherical()
	if radius == 0 {
		return
	}
	const eps = 1e-4
	polar = clampf(polar+deltaPolar, eps, math32.Pi-eps)
	o.place(radius, azimuth+deltaAzimuth, polar)
}

// Zoom moves the camera towards (steps > 0) or away from the target.
func (o *OrbitControls) Zoom(steps float32) {
	if !o.Enabled {
		return
	}
	radius, azimuth, polar := o.spherical()
	if radius == 0 {
		return
	}
	radius *= math32.Pow(1-o.ZoomSpeed, steps)
	o.place(clampf(radius, o.MinDistance, o.MaxDistance), azimuth, polar)
}

func (o *OrbitControls) spherical() (radius, azimuth, polar float32) {
	offset := o.Camera.Position.Sub(o.Target)
	radius = offset.Len()
	if radius == 0 {
		return 0, 0, 0
	}
	azimuth = math32.Atan2(offset.X(), offset.Z())
	polar = math32.Acos(clampf(offset.Y()/radius, -1, 1))
	return radius, azimuth, polar
}

func (o *OrbitControls) place(radius, azimuth, polar float32) {
	sinPolar := math32.Sin(polar)
	offset := mgl32.Vec3{
		radius * sinPolar * math32.Sin(azimuth),
		radius * math32.Cos(polar),
		radius * sinPolar * math32.Cos(azimuth),
	}
	o.Camera.Position = o.Target.Add(offset)
	o.Camera.LookAt(o.Target)
}

func clampf(v, lo, hi float32) float32 {
	return mgl32.Clamp(v, lo, hi)
}
