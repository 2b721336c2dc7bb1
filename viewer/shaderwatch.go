package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"scene-viewer/core"
)

const shaderDebounce = 100 * time.Millisecond

// ShaderWatcher re-reads the configured shader files whenever they change
// and posts a ShaderChanged event. Parent directories are watched so that
// editors which replace files on save are still seen.
type ShaderWatcher struct {
	watcher  *fsnotify.Watcher
	sources  ShaderSection
	files    map[string]bool
	queue    *EventQueue
	log      core.Logger
	debounce time.Duration
}

func WatchShaders(sec ShaderSection, queue *EventQueue, log core.Logger) (*ShaderWatcher, error) {
	if sec.Vertex == "" || sec.Fragment == "" {
		return nil, fmt.Errorf("shader watch needs both vertex and fragment paths")
	}
	if log == nil {
		log = core.NopLogger{}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}

	w := &ShaderWatcher{
		watcher:  watcher,
		sources:  sec,
		files:    make(map[string]bool, 2),
		queue:    queue,
		log:      log,
		debounce: shaderDebounce,
	}
	dirs := make(map[string]bool, 2)
	for _, p := range []string{sec.Vertex, sec.Fragment} {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("resolve shader path %q: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %q: %w", dir, err)
		}
	}
	return w, nil
}

func (w *ShaderWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	return err == nil && w.files[abs]
}

// Run delivers reloads until ctx is done or the watcher is closed.
func (w *ShaderWatcher) Run(ctx context.Context) {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.log.Debugf("shader file %s: %s", event.Op, event.Name)
				fire = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("shader watcher: %v", err)
		case <-fire:
			fire = nil
			vs, fs, err := LoadShaderSources(w.sources)
			w.queue.Post(ShaderChanged{Vertex: vs, Fragment: fs, Err: err})
		}
	}
}

func (w *ShaderWatcher) Close() error {
	return w.watcher.Close()
}

// applyShader swaps the sphere's sources. Uniform values, including time,
// carry over; a read error keeps the current program.
func (st *State) applyShader(ev ShaderChanged) {
	if ev.Err != nil {
		st.Log.Warnf("shader reload: %v", ev.Err)
		return
	}
	st.ShaderMaterial.Shader.SetSources(ev.Vertex, ev.Fragment)
	st.Log.Infof("shader reloaded (revision %d)", st.ShaderMaterial.Shader.Revision)
}
