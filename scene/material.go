package scene

import "scene-viewer/core"

// Material describes surface appearance properties for a mesh.
// A material with Shader set bypasses the built-in Phong pipeline entirely.
type Material struct {
	Name      string
	Color     core.Color // base diffuse color (multiplied with Map if set)
	Specular  core.Color // Phong specular highlight color
	Shininess float32    // Phong shininess exponent (1–256+)
	Unlit     bool       // skip lighting, output raw color/texture

	// Transparent enables alpha blending with Opacity as the fragment alpha.
	// Transparent geometry is drawn after opaque geometry without depth writes.
	Transparent bool
	Opacity     float32

	// DoubleSided disables back-face culling.
	DoubleSided bool

	// Optional color texture; if set, it is multiplied with Color.
	Map *Texture

	// Shader replaces the built-in shading with a user program.
	Shader *ShaderProgram
}

// DefaultMaterial returns a plain white matte Phong material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Color:     core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
		Opacity:   1,
	}
}

// NewMaterial creates a Phong material with the given base color.
func NewMaterial(name string, color core.Color) *Material {
	return &Material{
		Name:      name,
		Color:     color,
		Specular:  core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		Shininess: 32,
		Opacity:   1,
	}
}

// NewUnlitMaterial shows the texture (or color) without lighting.
func NewUnlitMaterial(name string, tex *Texture) *Material {
	return &Material{
		Name:    name,
		Color:   core.ColorWhite,
		Unlit:   true,
		Opacity: 1,
		Map:     tex,
	}
}

// Uniform is a scalar shader parameter. Value is kept in float64 so that
// small per-frame increments accumulate without float32 rounding drift.
type Uniform struct {
	Value float64
}

// ShaderProgram is a user-supplied GLSL program with named scalar uniforms.
// The backend recompiles it whenever Revision changes.
type ShaderProgram struct {
	Name     string
	Vertex   string
	Fragment string
	Uniforms map[string]*Uniform
	Revision uint64
}

func NewShaderProgram(name, vertex, fragment string) *ShaderProgram {
	return &ShaderProgram{
		Name:     name,
		Vertex:   vertex,
		Fragment: fragment,
		Uniforms: make(map[string]*Uniform),
	}
}

// SetSources swaps the GLSL sources and schedules a recompile.
func (p *ShaderProgram) SetSources(vertex, fragment string) {
	p.Vertex = vertex
	p.Fragment = fragment
	p.Revision++
}

// Uniform returns the named uniform, creating it at zero if missing.
func (p *ShaderProgram) Uniform(name string) *Uniform {
	u, ok := p.Uniforms[name]
	if !ok {
		u = &Uniform{}
		p.Uniforms[name] = u
	}
	return u
}
