package viewer

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"scene-viewer/core"
	"scene-viewer/scene"
)

// AssetKind names one of the fixed startup assets.
type AssetKind int

const (
	AssetSprite AssetKind = iota
	AssetSkybox
	AssetBooks
	AssetChicken
	AssetDragon
)

func (k AssetKind) String() string {
	switch k {
	case AssetSprite:
		return "sprite"
	case AssetSkybox:
		return "skybox"
	case AssetBooks:
		return "books"
	case AssetChicken:
		return "chicken"
	case AssetDragon:
		return "dragon"
	}
	return fmt.Sprintf("AssetKind(%d)", int(k))
}

// Decoded is what a DecodeFunc produces: model nodes or a single texture.
type Decoded struct {
	Nodes   []*scene.Node
	Texture *scene.Texture
}

// DecodeFunc turns a file into scene data. It runs off the loop goroutine
// and must not touch shared state.
type DecodeFunc func(path string, log core.Logger) (Decoded, error)

// Loader issues fire-and-forget asset requests. Each completion is posted to
// the event queue; there is no retry, timeout or cancellation.
type Loader struct {
	queue    *EventQueue
	log      core.Logger
	decoders map[AssetKind]DecodeFunc
	wg       sync.WaitGroup
}

func NewLoader(queue *EventQueue, log core.Logger) *Loader {
	if log == nil {
		log = core.NopLogger{}
	}
	return &Loader{
		queue:    queue,
		log:      log,
		decoders: DefaultDecoders(),
	}
}

// DefaultDecoders maps each kind to its file format.
func DefaultDecoders() map[AssetKind]DecodeFunc {
	texture := func(path string, _ core.Logger) (Decoded, error) {
		tex, err := scene.LoadTexture(path)
		return Decoded{Texture: tex}, err
	}
	gltf := func(path string, log core.Logger) (Decoded, error) {
		nodes, err := scene.LoadGLTF(path, log)
		return Decoded{Nodes: nodes}, err
	}
	return map[AssetKind]DecodeFunc{
		AssetSprite: texture,
		AssetSkybox: texture,
		AssetBooks: func(path string, log core.Logger) (Decoded, error) {
			nodes, err := scene.LoadOBJ(path, log)
			return Decoded{Nodes: nodes}, err
		},
		AssetChicken: gltf,
		AssetDragon:  gltf,
	}
}

// SetDecoder replaces the decoder for kind. Call before any Request.
func (l *Loader) SetDecoder(kind AssetKind, fn DecodeFunc) {
	l.decoders[kind] = fn
}

// Request starts loading path in the background and returns the request id.
func (l *Loader) Request(kind AssetKind, path string) string {
	id := uuid.NewString()
	decode, ok := l.decoders[kind]
	l.log.Infof("requesting %s %q (%s)", kind, path, id)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ev := AssetLoaded{ID: id, Kind: kind, Path: path}
		if !ok {
			ev.Err = fmt.Errorf("no decoder for %s", kind)
		} else {
			d, err := decode(path, l.log)
			if err != nil {
				ev.Err = fmt.Errorf("load %s %q: %w", kind, path, err)
			} else {
				ev.Nodes, ev.Texture = d.Nodes, d.Texture
			}
		}
		l.queue.Post(ev)
	}()
	return id
}

// RequestAll issues one request per configured asset path. Empty paths are
// skipped.
func (l *Loader) RequestAll(assets AssetsSection) {
	for _, r := range []struct {
		kind AssetKind
		path string
	}{
		{AssetSprite, assets.Sprite},
		{AssetSkybox, assets.Skybox},
		{AssetBooks, assets.Books},
		{AssetChicken, assets.Chicken},
		{AssetDragon, assets.Dragon},
	} {
		if r.path != "" {
			l.Request(r.kind, r.path)
		}
	}
}

// Wait blocks until every request issued so far has posted its event.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// ── Placement ────────────────────────────────────────────────────────────────

var (
	booksPosition   = mgl32.Vec3{-1, -1, 0}
	chickenPosition = mgl32.Vec3{-5, 0, -5}
	dragonPosition  = mgl32.Vec3{0, 0, -7}
)

const (
	booksScale   = 0.05
	chickenScale = 5

	skyboxRadius    = 500
	skyboxWidthSeg  = 60
	skyboxHeightSeg = 40
)

// applyAsset inserts a finished load into the scene. Failures are logged
// and leave the scene untouched.
func (st *State) applyAsset(ev AssetLoaded) {
	if ev.Err != nil {
		st.Log.Warnf("asset %s failed: %v", ev.Kind, ev.Err)
		return
	}

	switch ev.Kind {
	case AssetSprite:
		if ev.Texture == nil {
			st.Log.Warnf("asset %s %q: no texture", ev.Kind, ev.Path)
			return
		}
		st.Particles.Sprite = ev.Texture

	case AssetSkybox:
		if ev.Texture == nil {
			st.Log.Warnf("asset %s %q: no texture", ev.Kind, ev.Path)
			return
		}
		mesh := scene.CreateSphere(skyboxRadius, skyboxWidthSeg, skyboxHeightSeg)
		mesh.Name = "Skybox"
		mesh.Scale(-1, 1, 1)
		mesh.Material = scene.NewUnlitMaterial("Skybox", ev.Texture)
		node := scene.NewNode("Skybox")
		node.Mesh = mesh
		st.Scene.AddNode(node)
		st.Skybox = node

	case AssetBooks:
		root := st.addModel("Books", ev.Nodes)
		root.MultiplyScale(booksScale)
		root.SetPosition(booksPosition)
		st.ModelReady = true

	case AssetChicken:
		root := st.addModel("Chicken", ev.Nodes)
		root.SetPosition(chickenPosition)
		root.MultiplyScale(chickenScale)

	case AssetDragon:
		root := st.addModel("Dragon", ev.Nodes)
		root.SetPosition(dragonPosition)
		hidden := 0
		root.Traverse(func(n *scene.Node) {
			if n.Name != st.Config.Assets.DragonMesh || n.Mesh == nil {
				return
			}
			if n.Mesh.Material == nil {
				n.Mesh.Material = scene.DefaultMaterial()
			}
			n.Mesh.Material.Transparent = true
			n.Mesh.Material.Opacity = 0
			hidden++
		})
		st.Log.Debugf("dragon: %d mesh(es) named %q made transparent", hidden, st.Config.Assets.DragonMesh)

	default:
		st.Log.Warnf("asset %q: unknown kind %s", ev.Path, ev.Kind)
		return
	}
	st.Log.Infof("asset %s ready (%s)", ev.Kind, ev.ID)
}

// addModel parents the loaded root nodes under a single placement node.
func (st *State) addModel(name string, nodes []*scene.Node) *scene.Node {
	root := scene.NewNode(name)
	for _, n := range nodes {
		root.AddChild(n)
	}
	st.Scene.AddNode(root)
	st.Models[name] = root
	return root
}
