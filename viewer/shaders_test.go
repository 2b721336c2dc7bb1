package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlasmaSourcesEmbedded(t *testing.T) {
	vs, fs := PlasmaSources()
	assert.Contains(t, vs, "#version 410 core")
	assert.Contains(t, vs, "modelViewMatrix")
	assert.Contains(t, fs, "uniform float time")
}

func TestLoadShaderSources(t *testing.T) {
	vs, fs, err := LoadShaderSources(ShaderSection{})
	require.NoError(t, err)
	wantVS, wantFS := PlasmaSources()
	assert.Equal(t, wantVS, vs)
	assert.Equal(t, wantFS, fs)

	dir := t.TempDir()
	sec := ShaderSection{Vertex: filepath.Join(dir, "a.vert"), Fragment: filepath.Join(dir, "a.frag")}
	require.NoError(t, os.WriteFile(sec.Vertex, []byte("vertex"), 0o644))
	_, _, err = LoadShaderSources(sec)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(sec.Fragment, []byte("fragment"), 0o644))
	vs, fs, err = LoadShaderSources(sec)
	require.NoError(t, err)
	assert.Equal(t, "vertex", vs)
	assert.Equal(t, "fragment", fs)
}

func TestApplyShaderKeepsTime(t *testing.T) {
	st, warn := newTestState(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, st.Tick(time.Now()))
	}
	prog := st.ShaderMaterial.Shader
	rev := prog.Revision

	st.Apply(ShaderChanged{Vertex: "v2", Fragment: "f2"})
	assert.Equal(t, "v2", prog.Vertex)
	assert.Equal(t, "f2", prog.Fragment)
	assert.Equal(t, rev+1, prog.Revision)
	assert.InDelta(t, 0.1, prog.Uniform("time").Value, 1e-9)

	st.Apply(ShaderChanged{Err: errors.New("read failed")})
	assert.Equal(t, "v2", prog.Vertex)
	assert.Equal(t, rev+1, prog.Revision)
	assert.Contains(t, warn.String(), "read failed")
}

func TestShaderWatcherPostsChange(t *testing.T) {
	dir := t.TempDir()
	sec := ShaderSection{Vertex: filepath.Join(dir, "s.vert"), Fragment: filepath.Join(dir, "s.frag")}
	require.NoError(t, os.WriteFile(sec.Vertex, []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(sec.Fragment, []byte("f1"), 0o644))

	q := NewEventQueue(8)
	w, err := WatchShaders(sec, q, nil)
	require.NoError(t, err)
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(sec.Fragment, []byte("f2"), 0o644))

	var got ShaderChanged
	require.Eventually(t, func() bool {
		for _, ev := range q.Drain() {
			if sc, ok := ev.(ShaderChanged); ok {
				got = sc
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, got.Err)
	assert.Equal(t, "v1", got.Vertex)
	assert.Equal(t, "f2", got.Fragment)
}

func TestWatchShadersNeedsBothPaths(t *testing.T) {
	_, err := WatchShaders(ShaderSection{Vertex: "a.vert"}, NewEventQueue(1), nil)
	assert.Error(t, err)
}

func TestEventQueueDrainDoesNotBlock(t *testing.T) {
	q := NewEventQueue(0)
	assert.Empty(t, q.Drain())

	q.Post(ShaderChanged{Vertex: "a"})
	q.Post(ShaderChanged{Vertex: "b"})
	events := q.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].(ShaderChanged).Vertex)
	assert.Empty(t, q.Drain())
}
