package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d: want %v, got %v", i, want, got)
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 1000)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	cam.LookAt(mgl32.Vec3{})
	assertVec3(t, mgl32.Vec3{0, 0, -1}, cam.Forward())

	cam.SetPosition(mgl32.Vec3{5, 0, 0})
	cam.LookAt(mgl32.Vec3{})
	assertVec3(t, mgl32.Vec3{-1, 0, 0}, cam.Forward())
	assertVec3(t, mgl32.Vec3{0, 1, 0}, cam.Up())

	// the origin lands on the view axis
	p := cam.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{0, 0, -5}, p.Vec3())
}

func TestCameraSetAspect(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 1000)
	cam.SetAspect(1600, 800)
	assert.InDelta(t, 2, cam.AspectRatio, 1e-6)

	cam.SetAspect(100, 0)
	assert.InDelta(t, 2, cam.AspectRatio, 1e-6, "zero height is ignored")
}

func TestOrbitKeepsDistance(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 1000)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	o := NewOrbitControls(cam, mgl32.Vec3{})

	o.Orbit(0.5, 0.3)
	assert.InDelta(t, 5, cam.Position.Len(), 1e-4)
	assertVec3(t, cam.Position.Mul(-1).Normalize(), cam.Forward())
}

func TestOrbitDragAndZoom(t *testing.T) {
	cam := NewCamera(75, 1, 0.1, 1000)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	o := NewOrbitControls(cam, mgl32.Vec3{})

	o.Drag(100, 100)
	assertVec3(t, mgl32.Vec3{0, 0, 5}, cam.Position)

	o.BeginDrag(0, 0)
	o.Drag(100, 0)
	assert.True(t, o.Dragging())
	assert.NotEqual(t, float32(0), cam.Position.X())
	o.EndDrag()
	assert.False(t, o.Dragging())

	o.Zoom(1)
	assert.InDelta(t, 5*0.95, cam.Position.Len(), 1e-3)

	o.Enabled = false
	before := cam.Position
	o.Zoom(10)
	o.BeginDrag(0, 0)
	o.Drag(50, 50)
	assert.Equal(t, before, cam.Position)
}
