package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 640

[assets]
skybox = ""
dragon_mesh = "Wyrm"

[particles]
radius = 2.5
seed = 9

[log]
debug = true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset keys keep defaults")
	assert.Empty(t, cfg.Assets.Skybox)
	assert.Equal(t, "Wyrm", cfg.Assets.DragonMesh)
	assert.Equal(t, DefaultConfig().Assets.Books, cfg.Assets.Books)
	assert.Equal(t, float32(2.5), cfg.Particles.Radius)
	assert.Equal(t, int64(9), cfg.Particles.Seed)
	assert.True(t, cfg.Log.Debug)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "[window]\nfullscreen = true\n"},
		{"bad syntax", "[window\n"},
		{"zero width", "[window]\nwidth = 0\n"},
		{"negative radius", "[particles]\nradius = -1.0\n"},
		{"half shader pair", "[shader]\nvertex = \"a.vert\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
