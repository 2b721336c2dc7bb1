package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"scene-viewer/core"
	"scene-viewer/platform"
	"scene-viewer/renderer"
	"scene-viewer/viewer"
)

func main() {
	configPath := flag.String("config", "scene.toml", "TOML config file; missing means defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := core.NewDefaultLogger("viewer", *debug)
	if err := run(*configPath, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(configPath string, log *core.DefaultLogger) error {
	cfg, err := viewer.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Log.Debug {
		log.SetDebug(true)
	}

	windowConfig := platform.DefaultWindowConfig()
	windowConfig.Title = cfg.Window.Title
	windowConfig.Width = cfg.Window.Width
	windowConfig.Height = cfg.Window.Height
	windowConfig.VSync = cfg.Window.VSync

	window, err := platform.NewWindow(windowConfig)
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window, log)
	if err != nil {
		return err
	}
	defer engine.Destroy()

	seed := cfg.Particles.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	st := viewer.Bootstrap(cfg, window.Width, window.Height, rand.New(rand.NewSource(seed)), log)
	st.Renderer = engine
	st.Surface = framebufferSurface{window: window, engine: engine}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bindInput(window, st)

	if cfg.Shader.Vertex != "" {
		watcher, err := viewer.WatchShaders(cfg.Shader, st.Events, log)
		if err != nil {
			log.Warnf("shader hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
			log.Infof("watching %s and %s", cfg.Shader.Vertex, cfg.Shader.Fragment)
		}
	}

	loader := viewer.NewLoader(st.Events, log)
	loader.RequestAll(cfg.Assets)

	return loop(ctx, window, engine, st, cfg.Window.Title)
}

// loop runs until the window closes, Escape is pressed or ctx is cancelled.
// Asset completions are applied between frames, never during one.
func loop(ctx context.Context, window *platform.Window, engine *renderer.RenderEngine, st *viewer.State, title string) error {
	frames := 0
	lastTitle := time.Now()
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		window.PollEvents()
		st.DrainEvents()

		if err := st.Tick(time.Now()); err != nil {
			return err
		}
		engine.DrawPanel(st.Panel.Lines())
		engine.Present()

		frames++
		if now := time.Now(); now.Sub(lastTitle) >= time.Second {
			objects, _, tris, culled := engine.DrawStats()
			window.SetTitle(fmt.Sprintf("%s | FPS: %d | obj=%d tris=%d culled=%d", title, frames, objects, tris, culled))
			st.Log.Debugf("fps=%d objects=%d tris=%d culled=%d", frames, objects, tris, culled)
			frames = 0
			lastTitle = now
		}
	}
	return nil
}

func bindInput(window *platform.Window, st *viewer.State) {
	window.SetCursorPosCallback(st.HandlePointerMove)
	window.SetSizeCallback(st.HandleResize)
	window.SetMouseButtonCallback(func(button int, pressed bool) {
		x, y := window.GetCursorPos()
		st.HandleMouseButton(button, pressed, x, y)
	})
	window.SetScrollCallback(func(_, yoff float64) {
		st.HandleScroll(yoff)
	})
	window.SetKeyCallback(func(key int) {
		if key == core.KeyEscape {
			window.SetShouldClose(true)
			return
		}
		st.HandleKey(key)
	})
}

// framebufferSurface sizes the render target from the framebuffer, which
// differs from the window size on high-DPI displays.
type framebufferSurface struct {
	window *platform.Window
	engine *renderer.RenderEngine
}

func (s framebufferSurface) SetSize(int, int) {
	s.engine.SetSize(s.window.GetFramebufferSize())
}
