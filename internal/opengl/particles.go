package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/scene"
)

// ── Point sprite shaders ─────────────────────────────────────────────────────

// Billboard vertex shader: quad corners are built on the CPU in model space.
const pointVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec3 inColor;

uniform mat4 mvp;

out vec2 fragUV;
out vec3 fragColor;

void main() {
    gl_Position = mvp * vec4(inPos, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

// Sprite texture or procedural soft circle, with an alpha cut-off.
const pointFragSrc = `
#version 410 core
in vec2 fragUV;
in vec3 fragColor;

out vec4 outColor;

uniform sampler2D spriteTex;
uniform bool      hasSprite;
uniform float     alphaTest;

void main() {
    vec4 col = vec4(fragColor, 1.0);
    if (hasSprite) {
        col *= texture(spriteTex, fragUV);
    } else {
        float d = length(fragUV - vec2(0.5)) * 2.0;
        col.a  *= clamp(1.0 - d * d, 0.0, 1.0);
    }
    if (col.a < alphaTest) {
        discard;
    }
    outColor = col;
}
` + "\x00"

// ── pointRenderer ────────────────────────────────────────────────────────────

// pointRenderer owns the GPU resources for PointCloud sprites.
// It is created lazily by Renderer.DrawPoints on first use.
type pointRenderer struct {
	prog         uint32
	vao          uint32
	vbo          uint32
	mvpLoc       int32
	hasSpriteLoc int32
	spriteTexLoc int32
	alphaTestLoc int32
	vboCap       int // current VBO capacity in vertices
	buf          []float32
}

const (
	vertsPerPoint = 6
	floatsPerVert = 8 // pos(3) + uv(2) + color(3)
)

func newPointRenderer() (*pointRenderer, error) {
	prog, err := newProgram(pointVertSrc, pointFragSrc)
	if err != nil {
		return nil, fmt.Errorf("point shader: %w", err)
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	const stride = int32(floatsPerVert * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(12))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(20))
	gl.BindVertexArray(0)

	pr := &pointRenderer{
		prog:         prog,
		vao:          vao,
		vbo:          vbo,
		mvpLoc:       uniformLoc(prog, "mvp"),
		hasSpriteLoc: uniformLoc(prog, "hasSprite"),
		spriteTexLoc: uniformLoc(prog, "spriteTex"),
		alphaTestLoc: uniformLoc(prog, "alphaTest"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(pr.spriteTexLoc, 0)
	return pr, nil
}

// draw builds one camera-facing quad per point in model space and draws them.
//
// Camera right and up in world space are rows 0 and 1 of the view matrix;
// they are carried into model space by the inverse of the model's linear part.
func (pr *pointRenderer) draw(pc *scene.PointCloud, model, view, proj mgl32.Mat4, viewportH int32, sprite uint32) {
	n := pc.Count()
	if n == 0 {
		return
	}

	toModel := model.Mat3().Inv()
	camRight := toModel.Mul3x1(mgl32.Vec3{view[0], view[4], view[8]})
	camUp := toModel.Mul3x1(mgl32.Vec3{view[1], view[5], view[9]})
	modelView := view.Mul4(model)

	need := n * vertsPerPoint * floatsPerVert
	if cap(pr.buf) < need {
		pr.buf = make([]float32, need)
	}
	buf := pr.buf[:need]
	out := 0
	addVert := func(p mgl32.Vec3, u, v float32, c mgl32.Vec3) {
		copy(buf[out:], []float32{p[0], p[1], p[2], u, v, c[0], c[1], c[2]})
		out += floatsPerVert
	}

	for i := 0; i < n; i++ {
		p := pc.Point(i)
		c := mgl32.Vec3{pc.Colors[i*3], pc.Colors[i*3+1], pc.Colors[i*3+2]}

		half := pc.Size / 2
		if !pc.SizeAttenuation && viewportH > 0 {
			// Size is in pixels: convert to world units at this depth.
			depth := -modelView.Mul4x1(p.Vec4(1)).Z()
			half = pc.Size / 2 * 2 * depth / (proj[5] * float32(viewportH))
		}
		r := camRight.Mul(half)
		u := camUp.Mul(half)

		bl := p.Sub(r).Sub(u)
		br := p.Add(r).Sub(u)
		tl := p.Sub(r).Add(u)
		tr := p.Add(r).Add(u)

		addVert(tl, 0, 1, c)
		addVert(br, 1, 0, c)
		addVert(tr, 1, 1, c)
		addVert(tl, 0, 1, c)
		addVert(bl, 0, 0, c)
		addVert(br, 1, 0, c)
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)
	vertCount := n * vertsPerPoint
	if vertCount > pr.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, len(buf)*4, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		pr.vboCap = vertCount
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(buf)*4, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Enable(gl.BLEND)
	if pc.Additive {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.DepthMask(pc.DepthWrite)
	gl.Disable(gl.CULL_FACE)

	mvp := proj.Mul4(modelView)
	gl.UseProgram(pr.prog)
	gl.UniformMatrix4fv(pr.mvpLoc, 1, false, &mvp[0])
	gl.Uniform1f(pr.alphaTestLoc, pc.AlphaTest)
	if sprite != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, sprite)
		gl.Uniform1i(pr.hasSpriteLoc, 1)
	} else {
		gl.Uniform1i(pr.hasSpriteLoc, 0)
	}

	gl.BindVertexArray(pr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertCount))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
}

func (pr *pointRenderer) destroy() {
	gl.DeleteVertexArrays(1, &pr.vao)
	gl.DeleteBuffers(1, &pr.vbo)
	gl.DeleteProgram(pr.prog)
}

// ── Renderer entry point ─────────────────────────────────────────────────────

// DrawPoints renders a point cloud with the camera set by BeginFrame.
func (r *Renderer) DrawPoints(pc *scene.PointCloud, model mgl32.Mat4) {
	if r.pointsFailed {
		return
	}
	if r.points == nil {
		pr, err := newPointRenderer()
		if err != nil {
			r.log.Errorf("points disabled: %v", err)
			r.pointsFailed = true
			return
		}
		r.points = pr
	}
	r.points.draw(pc, model, r.view, r.proj, r.viewportH, r.ensureTexture(pc.Sprite))
}
