package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is a half-space ax + by + cz + d >= 0 with Normal pointing inside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt; positive is inside.
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum:
// left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts normalised planes from a view-projection matrix
// (Gribb/Hartmann, applied to the rows of the matrix as GLSL sees it).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = planeFrom(r3.Add(r0))
	f.Planes[1] = planeFrom(r3.Sub(r0))
	f.Planes[2] = planeFrom(r3.Add(r1))
	f.Planes[3] = planeFrom(r3.Sub(r1))
	f.Planes[4] = planeFrom(r3.Add(r2))
	f.Planes[5] = planeFrom(r3.Sub(r2))
	return f
}

func planeFrom(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects reports false only when the box lies entirely outside one of
// the planes (positive-vertex test). Boxes straddling a corner may pass.
func (box AABB) Intersects(f *Frustum) bool {
	for _, p := range f.Planes {
		pv := box.Max
		for i := 0; i < 3; i++ {
			if p.Normal[i] < 0 {
				pv[i] = box.Min[i]
			}
		}
		if p.DistanceTo(pv) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing all eight corners of box
// under m.
func (box AABB) Transform(m mgl32.Mat4) AABB {
	mn, mx := box.Min, box.Max
	first := mgl32.TransformCoordinate(mn, m)
	out := AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		c := mn
		if i&1 != 0 {
			c[0] = mx[0]
		}
		if i&2 != 0 {
			c[1] = mx[1]
		}
		if i&4 != 0 {
			c[2] = mx[2]
		}
		out.extend(mgl32.TransformCoordinate(c, m))
	}
	return out
}

func (box *AABB) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		box.Min[i] = min(box.Min[i], p[i])
		box.Max[i] = max(box.Max[i], p[i])
	}
}

// Bounds returns the local-space box of the mesh, recomputed only after the
// vertex data changes revision.
func (m *Mesh) Bounds() AABB {
	if m.boundsValid && m.boundsRevision == m.Revision {
		return m.bounds
	}
	var box AABB
	if len(m.Vertices) > 0 {
		box = AABB{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
		for _, v := range m.Vertices[1:] {
			box.extend(v.Position)
		}
	}
	m.bounds, m.boundsRevision, m.boundsValid = box, m.Revision, true
	return box
}
