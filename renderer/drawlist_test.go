package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-viewer/scene"
)

func meshNode(name string, pos mgl32.Vec3, transparent bool) *scene.Node {
	n := scene.NewNode(name)
	n.Mesh = scene.CreateBox(1, 1, 1)
	n.Mesh.Material = scene.DefaultMaterial()
	n.Mesh.Material.Transparent = transparent
	n.SetPosition(pos)
	return n
}

// viewProj looks down -Z from eye.
func viewProj(eye mgl32.Vec3) mgl32.Mat4 {
	cam := scene.NewCamera(75, 1, 0.1, 1000)
	cam.SetPosition(eye)
	return cam.ViewProjectionMatrix()
}

func TestBuildDrawListBuckets(t *testing.T) {
	s := scene.NewScene()
	s.AddNode(meshNode("solid", mgl32.Vec3{}, false))
	s.AddNode(meshNode("near", mgl32.Vec3{0, 0, 3}, true))
	s.AddNode(meshNode("far", mgl32.Vec3{0, 0, -7}, true))

	points := scene.NewNode("points")
	points.Points = &scene.PointCloud{Positions: make([]float32, 3), Colors: make([]float32, 3)}
	s.AddNode(points)

	hidden := meshNode("hidden", mgl32.Vec3{}, false)
	hidden.Visible = false
	s.AddNode(hidden)

	list := buildDrawList(s, mgl32.Vec3{0, 0, 5}, viewProj(mgl32.Vec3{0, 0, 5}))

	require.Len(t, list.opaque, 1)
	assert.Equal(t, "solid", list.opaque[0].Name)
	require.Len(t, list.transparent, 2)
	assert.Equal(t, "far", list.transparent[0].Name)
	assert.Equal(t, "near", list.transparent[1].Name)
	require.Len(t, list.points, 1)
	assert.Equal(t, "points", list.points[0].Name)
}

func TestBuildDrawListNestedTransform(t *testing.T) {
	s := scene.NewScene()
	parent := scene.NewNode("model")
	parent.SetPosition(mgl32.Vec3{0, 0, -100})
	parent.AddChild(meshNode("child", mgl32.Vec3{}, true))
	s.AddNode(parent)
	s.AddNode(meshNode("root", mgl32.Vec3{0, 0, -10}, true))

	list := buildDrawList(s, mgl32.Vec3{}, viewProj(mgl32.Vec3{}))
	require.Len(t, list.transparent, 2)
	assert.Equal(t, "child", list.transparent[0].Name, "sorting uses world positions")
}

func TestBuildDrawListCulls(t *testing.T) {
	s := scene.NewScene()
	s.AddNode(meshNode("ahead", mgl32.Vec3{0, 0, -5}, false))
	s.AddNode(meshNode("behind", mgl32.Vec3{0, 0, 20}, false))
	s.AddNode(meshNode("aside", mgl32.Vec3{200, 0, -5}, true))

	sky := scene.NewNode("sky")
	sky.Mesh = scene.CreateSphere(500, 16, 8)
	s.AddNode(sky)

	points := scene.NewNode("points")
	points.Points = &scene.PointCloud{Positions: []float32{0, 0, 50}, Colors: make([]float32, 3)}
	s.AddNode(points)

	list := buildDrawList(s, mgl32.Vec3{0, 0, 5}, viewProj(mgl32.Vec3{0, 0, 5}))
	require.Len(t, list.opaque, 2)
	assert.Equal(t, "ahead", list.opaque[0].Name)
	assert.Equal(t, "sky", list.opaque[1].Name, "a box around the camera is never culled")
	assert.Empty(t, list.transparent)
	assert.Len(t, list.points, 1)
	assert.Equal(t, 2, list.culled)
}
