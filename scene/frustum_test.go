package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumFromMatrix(t *testing.T) {
	cam := NewCamera(90, 1, 1, 100)
	f := FrustumFromMatrix(cam.ViewProjectionMatrix())

	near, far := f.Planes[4], f.Planes[5]
	assert.InDelta(t, 0, near.DistanceTo(mgl32.Vec3{0, 0, -1}), 1e-4)
	assert.InDelta(t, 0, far.DistanceTo(mgl32.Vec3{0, 0, -100}), 1e-2)
	for i, p := range f.Planes {
		assert.Greater(t, p.DistanceTo(mgl32.Vec3{0, 0, -10}), float32(0), "plane %d", i)
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestAABBIntersects(t *testing.T) {
	cam := NewCamera(90, 1, 1, 100)
	f := FrustumFromMatrix(cam.ViewProjectionMatrix())

	unit := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.True(t, unit.Transform(mgl32.Translate3D(0, 0, -10)).Intersects(&f))
	assert.False(t, unit.Transform(mgl32.Translate3D(0, 0, 10)).Intersects(&f), "behind")
	assert.False(t, unit.Transform(mgl32.Translate3D(0, 0, -200)).Intersects(&f), "past far")
	assert.False(t, unit.Transform(mgl32.Translate3D(50, 0, -10)).Intersects(&f), "left of view")
	assert.True(t, unit.Transform(mgl32.Scale3D(500, 500, 500)).Intersects(&f), "camera inside")
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}
	out := box.Transform(mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90))))

	assert.InDelta(t, 7, out.Min.X(), 1e-4)
	assert.InDelta(t, 13, out.Max.X(), 1e-4)
	assert.InDelta(t, -2, out.Min.Y(), 1e-4)
	assert.InDelta(t, -1, out.Min.Z(), 1e-4)
	assert.InDelta(t, 1, out.Max.Z(), 1e-4)
}

func TestMeshBoundsFollowRevision(t *testing.T) {
	m := CreateBox(2, 4, 6)
	b := m.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -2, -3}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Max)

	m.Scale(2, 1, 1)
	assert.Equal(t, float32(2), m.Bounds().Max.X())
}
