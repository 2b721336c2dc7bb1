package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
)

// Scene owns the node graph and the lights composited each frame.
// Nodes are only ever appended; the viewer never removes them.
type Scene struct {
	Root       *Node
	Lights     []*Light
	Background core.Color
}

// LightType selects how a Light contributes to shading.
type LightType int

const (
	LightAmbient LightType = iota
	LightDirectional
	LightPoint
)

// Light represents a light source. Directional lights shine from Position
// towards Target; point lights fall off to zero at Range (0 = infinite).
type Light struct {
	Type      LightType
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	Color     core.Color
	Intensity float32
	Range     float32
}

// Direction is the unit vector a directional light travels along.
func (l *Light) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Lights:     make([]*Light, 0),
		Background: core.ColorBlack,
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// Position is the scene origin cameras aim at.
func (s *Scene) Position() mgl32.Vec3 {
	return s.Root.Transform.Position
}

// VisibleNodes returns every visible node carrying geometry or points.
// A hidden node hides its whole subtree.
func (s *Scene) VisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil || n.Points != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return visible
}

// NodeCount counts every node below the root.
func (s *Scene) NodeCount() int {
	count := -1
	s.Root.Traverse(func(*Node) { count++ })
	return count
}
