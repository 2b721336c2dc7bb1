package viewer

import (
	_ "embed"
	"fmt"
	"os"
)

var (
	//go:embed shaders/plasma.vert
	plasmaVertex string
	//go:embed shaders/plasma.frag
	plasmaFragment string
)

// PlasmaSources returns the built-in animated sphere shader.
func PlasmaSources() (vertex, fragment string) {
	return plasmaVertex, plasmaFragment
}

// LoadShaderSources reads the configured shader pair, or the built-in one
// when no paths are set.
func LoadShaderSources(sec ShaderSection) (vertex, fragment string, err error) {
	if sec.Vertex == "" && sec.Fragment == "" {
		vertex, fragment = PlasmaSources()
		return vertex, fragment, nil
	}
	vs, err := os.ReadFile(sec.Vertex)
	if err != nil {
		return "", "", fmt.Errorf("read vertex shader %q: %w", sec.Vertex, err)
	}
	fs, err := os.ReadFile(sec.Fragment)
	if err != nil {
		return "", "", fmt.Errorf("read fragment shader %q: %w", sec.Fragment, err)
	}
	return string(vs), string(fs), nil
}
