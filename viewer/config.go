package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the viewer configuration. Every field has a default; a TOML file
// only needs to name what it overrides.
type Config struct {
	Window    WindowSection    `toml:"window"`
	Assets    AssetsSection    `toml:"assets"`
	Particles ParticlesSection `toml:"particles"`
	Shader    ShaderSection    `toml:"shader"`
	Log       LogSection       `toml:"log"`
}

type WindowSection struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// AssetsSection holds the file paths fetched at startup. An empty path
// skips that request.
type AssetsSection struct {
	Sprite     string `toml:"sprite"`
	Skybox     string `toml:"skybox"`
	Books      string `toml:"books"`
	Chicken    string `toml:"chicken"`
	Dragon     string `toml:"dragon"`
	DragonMesh string `toml:"dragon_mesh"` // mesh node hidden inside the dragon model
}

type ParticlesSection struct {
	Radius float32 `toml:"radius"`
	Seed   int64   `toml:"seed"` // 0 seeds from the clock
}

// ShaderSection overrides the embedded plasma shader with files on disk,
// which are then watched for changes.
type ShaderSection struct {
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

type LogSection struct {
	Debug bool `toml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowSection{
			Width:  1280,
			Height: 720,
			Title:  "Scene Viewer",
			VSync:  true,
		},
		Assets: AssetsSection{
			Sprite:     "assets/particles/4.png",
			Skybox:     "assets/laufenburg_church_2k.hdr",
			Books:      "assets/models/book1/book_encyclopedia_set_01_1k.obj",
			Chicken:    "assets/models/chicken/CHICKEN.glb",
			Dragon:     "assets/models/dragon/DragonAttenuation.glb",
			DragonMesh: "Dragon",
		},
		Particles: ParticlesSection{Radius: 1},
	}
}

// LoadConfig reads path over the defaults. An empty path or a missing file
// yields the defaults unchanged; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config %q: %s", path, strict.String())
		}
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Particles.Radius <= 0 {
		return fmt.Errorf("particle radius %v must be positive", c.Particles.Radius)
	}
	if (c.Shader.Vertex == "") != (c.Shader.Fragment == "") {
		return errors.New("shader.vertex and shader.fragment must be set together")
	}
	return nil
}
