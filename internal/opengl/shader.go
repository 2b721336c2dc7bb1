package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
	"scene-viewer/scene"
)

// compiledShader is the GPU side of one scene.ShaderProgram.
type compiledShader struct {
	prog     uint32
	revision uint64
	failed   uint64 // revision that last failed to build; 0 = none
	hasProg  bool

	mvpLoc       int32
	modelLoc     int32
	modelViewLoc int32
	projLoc      int32
	uniformLocs  map[string]int32
}

// shaderCache compiles user shader programs on first use and rebuilds them
// when their revision moves. A failed rebuild keeps the last good program.
type shaderCache struct {
	log      core.Logger
	programs map[*scene.ShaderProgram]*compiledShader
}

func newShaderCache(log core.Logger) *shaderCache {
	return &shaderCache{log: log, programs: make(map[*scene.ShaderProgram]*compiledShader)}
}

// use binds the program for sp and uploads its matrices and scalar uniforms.
// It reports false when no usable program exists.
func (c *shaderCache) use(sp *scene.ShaderProgram, model, view, proj mgl32.Mat4) bool {
	cs := c.programs[sp]
	if cs == nil {
		cs = &compiledShader{}
		c.programs[sp] = cs
	}
	if (!cs.hasProg || cs.revision != sp.Revision) && cs.failed != sp.Revision+1 {
		c.rebuild(sp, cs)
	}
	if !cs.hasProg {
		return false
	}

	modelView := view.Mul4(model)
	mvp := proj.Mul4(modelView)
	gl.UseProgram(cs.prog)
	gl.UniformMatrix4fv(cs.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(cs.modelLoc, 1, false, &model[0])
	gl.UniformMatrix4fv(cs.modelViewLoc, 1, false, &modelView[0])
	gl.UniformMatrix4fv(cs.projLoc, 1, false, &proj[0])

	for name, u := range sp.Uniforms {
		loc, ok := cs.uniformLocs[name]
		if !ok {
			loc = uniformLoc(cs.prog, name)
			cs.uniformLocs[name] = loc
		}
		gl.Uniform1f(loc, float32(u.Value))
	}
	return true
}

func (c *shaderCache) rebuild(sp *scene.ShaderProgram, cs *compiledShader) {
	prog, err := newProgram(sp.Vertex, sp.Fragment)
	if err != nil {
		// revision+1 so that revision 0 can be recorded as failed
		cs.failed = sp.Revision + 1
		c.log.Warnf("shader %s (rev %d): %v", sp.Name, sp.Revision, err)
		return
	}
	if cs.hasProg {
		gl.DeleteProgram(cs.prog)
	}
	cs.prog = prog
	cs.hasProg = true
	cs.revision = sp.Revision
	cs.failed = 0
	cs.mvpLoc = uniformLoc(prog, "mvp")
	cs.modelLoc = uniformLoc(prog, "modelMatrix")
	cs.modelViewLoc = uniformLoc(prog, "modelViewMatrix")
	cs.projLoc = uniformLoc(prog, "projectionMatrix")
	cs.uniformLocs = make(map[string]int32, len(sp.Uniforms))
	c.log.Debugf("shader %s compiled (rev %d)", sp.Name, sp.Revision)
}

func (c *shaderCache) destroy() {
	for sp, cs := range c.programs {
		if cs.hasProg {
			gl.DeleteProgram(cs.prog)
		}
		delete(c.programs, sp)
	}
}
