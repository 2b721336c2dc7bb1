package opengl

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ── Panel shaders ────────────────────────────────────────────────────────────

const panelVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUV;

out vec2 fragUV;

void main() {
    gl_Position = vec4(inPos, 0.0, 1.0);
    fragUV      = inUV;
}
` + "\x00"

const panelFragSrc = `
#version 410 core
in vec2 fragUV;
out vec4 outColor;
uniform sampler2D panelTex;

void main() {
    outColor = texture(panelTex, fragUV);
}
` + "\x00"

const (
	panelPadding    = 6
	panelLineHeight = 15
	panelMargin     = 10
)

var (
	panelBackground = color.RGBA{R: 20, G: 20, B: 26, A: 200}
	panelText       = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// panelRenderer rasterises text lines with a fixed bitmap face into a
// texture and blits it to the top-right corner of the viewport. The texture
// is rebuilt only when the lines change.
type panelRenderer struct {
	prog uint32
	vao  uint32
	vbo  uint32
	tex  uint32

	lines  []string
	width  int
	height int
}

func newPanelRenderer() (*panelRenderer, error) {
	prog, err := newProgram(panelVertSrc, panelFragSrc)
	if err != nil {
		return nil, fmt.Errorf("panel shader: %w", err)
	}

	p := &panelRenderer{prog: prog}
	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.BindVertexArray(0)

	gl.GenTextures(1, &p.tex)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.UseProgram(prog)
	gl.Uniform1i(uniformLoc(prog, "panelTex"), 0)
	return p, nil
}

// rasterizePanel draws lines onto a translucent box sized to fit them.
func rasterizePanel(lines []string) *image.RGBA {
	face := basicfont.Face7x13
	w := 0
	for _, l := range lines {
		if adv := font.MeasureString(face, l).Ceil(); adv > w {
			w = adv
		}
	}
	w += 2 * panelPadding
	h := len(lines)*panelLineHeight + 2*panelPadding

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(panelBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(panelText), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(panelPadding, panelPadding+(i+1)*panelLineHeight-3)
		d.DrawString(l)
	}
	return img
}

func (p *panelRenderer) draw(lines []string, viewportW, viewportH int32) {
	if len(lines) == 0 || viewportW <= 0 || viewportH <= 0 {
		return
	}
	if !slices.Equal(lines, p.lines) {
		img := rasterizePanel(lines)
		p.width, p.height = img.Bounds().Dx(), img.Bounds().Dy()
		gl.BindTexture(gl.TEXTURE_2D, p.tex)
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(p.width), int32(p.height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		p.lines = slices.Clone(lines)
	}

	// pixel rect in the top-right corner → NDC
	x1 := float32(viewportW - panelMargin)
	x0 := x1 - float32(p.width)
	y0 := float32(panelMargin)
	y1 := y0 + float32(p.height)
	ndcX := func(x float32) float32 { return x/float32(viewportW)*2 - 1 }
	ndcY := func(y float32) float32 { return 1 - y/float32(viewportH)*2 }

	l, r := ndcX(x0), ndcX(x1)
	t, b := ndcY(y0), ndcY(y1)
	// image row 0 is the top, so v=0 at the top edge
	quad := []float32{
		l, t, 0, 0,
		l, b, 0, 1,
		r, b, 1, 1,
		l, t, 0, 0,
		r, b, 1, 1,
		r, t, 1, 0,
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(quad)*4, gl.Ptr(quad))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(p.prog)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.tex)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
}

func (p *panelRenderer) destroy() {
	gl.DeleteTextures(1, &p.tex)
	gl.DeleteVertexArrays(1, &p.vao)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteProgram(p.prog)
}

// DrawPanel overlays text lines in the top-right corner of the viewport.
func (r *Renderer) DrawPanel(lines []string) {
	if r.panelFailed {
		return
	}
	if r.panel == nil {
		p, err := newPanelRenderer()
		if err != nil {
			r.log.Errorf("panel disabled: %v", err)
			r.panelFailed = true
			return
		}
		r.panel = p
	}
	r.panel.draw(lines, r.viewportW, r.viewportH)
}
