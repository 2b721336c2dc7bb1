package viewer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-viewer/core"
	"scene-viewer/scene"
)

func modelNodes(names ...string) []*scene.Node {
	var nodes []*scene.Node
	for _, name := range names {
		n := scene.NewNode(name)
		n.Mesh = scene.CreateBox(1, 1, 1)
		n.Mesh.Material = scene.DefaultMaterial()
		nodes = append(nodes, n)
	}
	return nodes
}

func TestApplyBooks(t *testing.T) {
	st, _ := newTestState(t)
	count := st.Scene.NodeCount()

	st.Apply(AssetLoaded{Kind: AssetBooks, Nodes: modelNodes("Cover", "Pages")})

	assert.True(t, st.ModelReady)
	books := st.Models["Books"]
	require.NotNil(t, books)
	assert.Equal(t, mgl32.Vec3{-1, -1, 0}, books.Transform.Position)
	assert.InDelta(t, 0.05, books.Transform.Scale.X(), 1e-6)
	assert.Len(t, books.Children, 2)
	assert.Equal(t, count+3, st.Scene.NodeCount())
}

func TestApplyChicken(t *testing.T) {
	st, _ := newTestState(t)
	st.Apply(AssetLoaded{Kind: AssetChicken, Nodes: modelNodes("Chicken_mesh")})

	chicken := st.Models["Chicken"]
	require.NotNil(t, chicken)
	assert.Equal(t, mgl32.Vec3{-5, 0, -5}, chicken.Transform.Position)
	assert.Equal(t, mgl32.Vec3{5, 5, 5}, chicken.Transform.Scale)
	assert.False(t, st.ModelReady, "only the books gate the particles")
}

func TestApplyDragonHidesNamedMesh(t *testing.T) {
	st, _ := newTestState(t)

	body := modelNodes("Base")[0]
	glass := modelNodes("Dragon", "Dragon")
	holder := scene.NewNode("Dragon") // mesh-less nodes are left alone
	for _, g := range glass {
		holder.AddChild(g)
	}
	body.AddChild(holder)

	st.Apply(AssetLoaded{Kind: AssetDragon, Nodes: []*scene.Node{body}})

	dragon := st.Models["Dragon"]
	require.NotNil(t, dragon)
	assert.Equal(t, mgl32.Vec3{0, 0, -7}, dragon.Transform.Position)
	for _, g := range glass {
		assert.True(t, g.Mesh.Material.Transparent)
		assert.Zero(t, g.Mesh.Material.Opacity)
	}
	assert.False(t, body.Mesh.Material.Transparent)
	assert.Equal(t, float32(1), body.Mesh.Material.Opacity)
}

func TestApplySkybox(t *testing.T) {
	st, _ := newTestState(t)
	tex := scene.NewSolidTexture("sky", 10, 20, 30, 255)

	st.Apply(AssetLoaded{Kind: AssetSkybox, Texture: tex})

	require.NotNil(t, st.Skybox)
	mesh := st.Skybox.Mesh
	require.NotNil(t, mesh)
	assert.Len(t, mesh.Vertices, 61*41)
	assert.True(t, mesh.Material.Unlit)
	assert.Same(t, tex, mesh.Material.Map)
	for _, v := range mesh.Vertices[:50] {
		assert.InDelta(t, 500, v.Position.Len(), 1e-2)
	}
	// mirrored in x
	want := scene.CreateSphere(500, 60, 40).Vertices[61*20+10]
	got := mesh.Vertices[61*20+10]
	assert.Equal(t, -want.Position.X(), got.Position.X())
	assert.Equal(t, want.Position.Z(), got.Position.Z())
	assert.Equal(t, uint64(1), mesh.Revision)
}

func TestApplySprite(t *testing.T) {
	st, _ := newTestState(t)
	tex := scene.NewSolidTexture("spark", 255, 255, 255, 255)
	st.Apply(AssetLoaded{Kind: AssetSprite, Texture: tex})
	assert.Same(t, tex, st.Particles.Sprite)
}

func TestApplyFailureInsertsNothing(t *testing.T) {
	st, warn := newTestState(t)
	count := st.Scene.NodeCount()

	st.Apply(AssetLoaded{Kind: AssetBooks, Path: "books.obj", Err: errors.New("boom")})
	st.Apply(AssetLoaded{Kind: AssetSkybox, Path: "sky.hdr"})

	assert.False(t, st.ModelReady)
	assert.Equal(t, count, st.Scene.NodeCount())
	assert.Nil(t, st.Skybox)
	assert.Contains(t, warn.String(), "boom")
	assert.Contains(t, warn.String(), "no texture")
}

func TestLoaderPostsCompletion(t *testing.T) {
	q := NewEventQueue(4)
	l := NewLoader(q, core.NopLogger{})
	l.SetDecoder(AssetBooks, func(path string, _ core.Logger) (Decoded, error) {
		return Decoded{Nodes: modelNodes(path)}, nil
	})
	l.SetDecoder(AssetSkybox, func(path string, _ core.Logger) (Decoded, error) {
		return Decoded{}, errors.New("bad hdr")
	})

	okID := l.Request(AssetBooks, "books.obj")
	badID := l.Request(AssetSkybox, "sky.hdr")
	_, err := uuid.Parse(okID)
	require.NoError(t, err)
	assert.NotEqual(t, okID, badID)

	l.Wait()
	events := q.Drain()
	require.Len(t, events, 2)

	byID := map[string]AssetLoaded{}
	for _, ev := range events {
		loaded, ok := ev.(AssetLoaded)
		require.True(t, ok)
		byID[loaded.ID] = loaded
	}
	assert.NoError(t, byID[okID].Err)
	assert.Equal(t, "books.obj", byID[okID].Nodes[0].Name)
	assert.ErrorContains(t, byID[badID].Err, "bad hdr")
	assert.Equal(t, AssetSkybox, byID[badID].Kind)
}

func TestLoaderRequestAllSkipsEmpty(t *testing.T) {
	q := NewEventQueue(8)
	l := NewLoader(q, nil)
	var seen []AssetKind
	for kind := AssetSprite; kind <= AssetDragon; kind++ {
		l.SetDecoder(kind, func(string, core.Logger) (Decoded, error) { return Decoded{}, nil })
	}

	l.RequestAll(AssetsSection{Books: "a.obj", Dragon: "d.glb"})
	l.Wait()
	for _, ev := range q.Drain() {
		seen = append(seen, ev.(AssetLoaded).Kind)
	}
	assert.ElementsMatch(t, []AssetKind{AssetBooks, AssetDragon}, seen)
}

func TestLoaderDefaultDecoderMissingFile(t *testing.T) {
	q := NewEventQueue(1)
	l := NewLoader(q, nil)
	l.Request(AssetBooks, t.TempDir()+"/missing.obj")
	l.Wait()

	events := q.Drain()
	require.Len(t, events, 1)
	assert.Error(t, events[0].(AssetLoaded).Err)
}

func TestDrainEventsAppliesQueued(t *testing.T) {
	st, _ := newTestState(t)
	assert.Zero(t, st.DrainEvents())

	st.Events.Post(AssetLoaded{Kind: AssetBooks, Nodes: modelNodes("Cover")})
	assert.False(t, st.ModelReady, "nothing is applied until the loop drains")
	assert.Equal(t, 1, st.DrainEvents())
	assert.True(t, st.ModelReady)
}

func TestAssetKindString(t *testing.T) {
	assert.Equal(t, "dragon", AssetDragon.String())
	assert.Equal(t, "AssetKind(9)", AssetKind(9).String())
}
