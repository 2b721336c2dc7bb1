// Package viewer owns the scene state and drives it: bootstrap, asset
// placement, the per-frame tick, input handling and the debug panel. It has
// no window or GL dependency; cmd/viewer wires it to both.
package viewer

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
	"scene-viewer/scene"
)

// Renderer draws one frame. *renderer.RenderEngine satisfies it.
type Renderer interface {
	Render(s *scene.Scene, camera *scene.Camera) error
}

// Surface is the resizable render target.
type Surface interface {
	SetSize(width, height int)
}

// Controls are the values toggled from the debug panel.
type Controls struct {
	CameraShake bool
}

// State is everything the loop mutates. It is confined to the loop
// goroutine; background work reaches it only through Events.
type State struct {
	Config Config
	Log    core.Logger

	Scene  *scene.Scene
	Camera *scene.Camera
	Orbit  *scene.OrbitControls

	Particles    *scene.PointCloud
	ParticleNode *scene.Node
	AccentLight  *scene.Light

	ShaderMaterial *scene.Material
	ShaderSphere   *scene.Node
	Skybox         *scene.Node
	Models         map[string]*scene.Node

	Panel      *Panel
	Controls   Controls
	ModelReady bool

	Renderer Renderer
	Surface  Surface
	Events   *EventQueue

	mouseX, mouseY float32
	halfW, halfH   float32
}

const (
	cameraFOV  = 75
	cameraNear = 0.1
	cameraFar  = 1000

	ambientIntensity     = 0.5
	directionalIntensity = 0.5

	accentColor     = 0x9900ff
	accentIntensity = 1
	accentRange     = 2

	sphereRadius   = 1
	sphereSegments = 32
)

var (
	cameraStart      = mgl32.Vec3{0, 0, 5}
	directionalStart = mgl32.Vec3{5, 5, 5}
	spherePosition   = mgl32.Vec3{5, 0, -2}
)

// Bootstrap builds the initial scene for a surface of the given size. Model
// assets are not part of it; they arrive later through Apply.
func Bootstrap(cfg Config, width, height int, rng *rand.Rand, log core.Logger) *State {
	if log == nil {
		log = core.NopLogger{}
	}
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}

	st := &State{
		Config: cfg,
		Log:    log,
		Scene:  scene.NewScene(),
		Camera: scene.NewCamera(cameraFOV, aspect, cameraNear, cameraFar),
		Models: make(map[string]*scene.Node),
		Events: NewEventQueue(0),
		halfW:  float32(width) / 2,
		halfH:  float32(height) / 2,
	}
	st.Camera.SetPosition(cameraStart)
	st.Orbit = scene.NewOrbitControls(st.Camera, st.Scene.Position())

	// ── Lights ──
	st.Scene.AddLight(&scene.Light{
		Type:      scene.LightAmbient,
		Color:     core.ColorWhite,
		Intensity: ambientIntensity,
	})
	st.Scene.AddLight(&scene.Light{
		Type:      scene.LightDirectional,
		Position:  directionalStart,
		Target:    st.Scene.Position(),
		Color:     core.ColorWhite,
		Intensity: directionalIntensity,
	})

	// ── Shader sphere ──
	vs, fs, err := LoadShaderSources(cfg.Shader)
	if err != nil {
		log.Warnf("shader sources: %v; using built-in plasma shader", err)
		vs, fs = PlasmaSources()
	}
	program := scene.NewShaderProgram("Plasma", vs, fs)
	program.Uniform("time")
	st.ShaderMaterial = &scene.Material{
		Name:    "Plasma",
		Color:   core.ColorWhite,
		Opacity: 1,
		Shader:  program,
	}
	sphere := scene.CreateSphere(sphereRadius, sphereSegments, sphereSegments)
	sphere.Material = st.ShaderMaterial
	st.ShaderSphere = scene.NewNode("ShaderSphere")
	st.ShaderSphere.Mesh = sphere
	st.ShaderSphere.SetPosition(spherePosition)
	st.Scene.AddNode(st.ShaderSphere)

	// ── Particles ──
	st.Particles = scene.NewPointCloud(cfg.Particles.Radius, rng)
	st.ParticleNode = scene.NewNode("Particles")
	st.ParticleNode.Points = st.Particles
	st.Scene.AddNode(st.ParticleNode)

	st.AccentLight = &scene.Light{
		Type:      scene.LightPoint,
		Position:  st.Particles.Point(0),
		Color:     core.ColorHex(accentColor),
		Intensity: accentIntensity,
		Range:     accentRange,
	}
	st.Scene.AddLight(st.AccentLight)

	st.Panel = newCameraPanel(st)

	log.Debugf("bootstrap: %d nodes, %d lights, aspect %.3f", st.Scene.NodeCount(), len(st.Scene.Lights), aspect)
	return st
}

// PointerTarget returns the clamped pointer offset the shake follows.
func (st *State) PointerTarget() (x, y float32) {
	return st.mouseX, st.mouseY
}

// HalfViewport returns the half-size used to centre pointer coordinates.
func (st *State) HalfViewport() (w, h float32) {
	return st.halfW, st.halfH
}
