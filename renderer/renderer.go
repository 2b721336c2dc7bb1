package renderer

import (
	"fmt"

	"scene-viewer/core"
	"scene-viewer/internal/opengl"
	"scene-viewer/platform"
	"scene-viewer/scene"
)

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *platform.Window
	log    core.Logger

	width, height int

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
	lastCulled    int
}

func NewRenderEngine(window *platform.Window, log core.Logger) (*RenderEngine, error) {
	if log == nil {
		log = core.NopLogger{}
	}
	glRenderer, err := opengl.NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}

	w, h := window.GetFramebufferSize()
	re := &RenderEngine{gl: glRenderer, window: window, log: log}
	re.SetSize(w, h)

	log.Infof("render engine initialized (OpenGL, %dx%d)", w, h)
	return re, nil
}

// SetSize resizes the render surface.
func (re *RenderEngine) SetSize(width, height int) {
	re.width, re.height = width, height
	re.gl.SetViewport(width, height)
}

// Size returns the current render surface size.
func (re *RenderEngine) Size() (int, int) {
	return re.width, re.height
}

// Render draws one frame of s as seen from camera: opaque meshes first,
// then transparent meshes far to near, then point clouds.
func (re *RenderEngine) Render(s *scene.Scene, camera *scene.Camera) error {
	if s == nil || camera == nil {
		return fmt.Errorf("no scene or camera")
	}

	view := camera.ViewMatrix()
	proj := camera.ProjectionMatrix()
	re.gl.BeginFrame(s.Background, s.Lights, camera.Position, view, proj)

	list := buildDrawList(s, camera.Position, camera.ViewProjectionMatrix())
	objects, vertices, triangles := 0, 0, 0
	for _, group := range [][]*scene.Node{list.opaque, list.transparent} {
		for _, n := range group {
			re.gl.DrawMesh(n.Mesh, n.WorldMatrix())
			objects++
			vertices += len(n.Mesh.Vertices)
			triangles += n.Mesh.TriangleCount()
		}
	}
	for _, n := range list.points {
		re.gl.DrawPoints(n.Points, n.WorldMatrix())
		objects++
		vertices += n.Points.Count()
	}

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	re.lastCulled = list.culled
	return nil
}

// DrawPanel overlays the debug panel text. Call after Render.
func (re *RenderEngine) DrawPanel(lines []string) {
	re.gl.DrawPanel(lines)
}

// Present swaps the back buffer to the window.
func (re *RenderEngine) Present() {
	re.window.SwapBuffers()
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles, culled int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles, re.lastCulled
}
