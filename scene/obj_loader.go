package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
)

// objRef points at one position/uv/normal triple; -1 means absent.
type objRef struct{ v, vt, vn int }

type objGroup struct {
	name     string
	material string
	tris     [][3]objRef
}

// LoadOBJ parses a Wavefront .obj file and returns one node per object/group,
// each carrying a mesh. A companion .mtl file referenced via "mtllib" is
// loaded relative to the .obj; a missing .mtl only costs the materials.
func LoadOBJ(path string, log core.Logger) ([]*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	nodes, err := ParseOBJ(f, filepath.Dir(path), log)
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	return nodes, nil
}

// ParseOBJ reads OBJ text from r. dir resolves mtllib and texture paths.
func ParseOBJ(r io.Reader, dir string, log core.Logger) ([]*Node, error) {
	if log == nil {
		log = core.NopLogger{}
	}

	var positions, normals []mgl32.Vec3
	var uvs []mgl32.Vec2
	materials := map[string]*Material{}

	var groups []*objGroup
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if v, ok := parseVec3(fields[1:]); ok {
				positions = append(positions, v)
			}
		case "vn":
			if v, ok := parseVec3(fields[1:]); ok {
				normals = append(normals, v)
			}
		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})

		case "o", "g":
			if len(cur.tris) > 0 {
				groups = append(groups, cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objGroup{name: name, material: cur.material}

		case "usemtl":
			if len(fields) > 1 {
				cur.material = fields[1]
			}

		case "mtllib":
			if len(fields) < 2 {
				continue
			}
			loaded, err := loadMTL(filepath.Join(dir, fields[1]), dir)
			if err != nil {
				log.Warnf("obj: mtllib %s: %v", fields[1], err)
				continue
			}
			for k, m := range loaded {
				materials[k] = m
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			refs := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				refs = append(refs, parseFaceRef(tok, len(positions), len(uvs), len(normals)))
			}
			// fan: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(refs); i++ {
				cur.tris = append(cur.tris, [3]objRef{refs[0], refs[i], refs[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(cur.tris) > 0 {
		groups = append(groups, cur)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}

	nodes := make([]*Node, 0, len(groups))
	for _, g := range groups {
		mesh := buildOBJMesh(g, positions, normals, uvs)
		if mat, ok := materials[g.material]; ok {
			mesh.Material = mat
		} else {
			mesh.Material = DefaultMaterial()
		}
		n := NewNode(g.name)
		n.Mesh = mesh
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseVec3(fields []string) (mgl32.Vec3, bool) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, false
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, false
		}
		v[i] = float32(f)
	}
	return v, true
}

// parseFaceRef parses "v", "v/vt", "v//vn" or "v/vt/vn". OBJ indices are
// 1-based; negative indices count back from the end of the pool so far.
func parseFaceRef(tok string, nv, nvt, nvn int) objRef {
	resolve := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		switch {
		case err != nil || i == 0:
			return -1
		case i < 0:
			return n + i
		}
		return i - 1
	}
	parts := strings.Split(tok, "/")
	ref := objRef{v: -1, vt: -1, vn: -1}
	ref.v = resolve(parts[0], nv)
	if len(parts) > 1 {
		ref.vt = resolve(parts[1], nvt)
	}
	if len(parts) > 2 {
		ref.vn = resolve(parts[2], nvn)
	}
	return ref
}

// buildOBJMesh welds identical references into shared vertices.
func buildOBJMesh(g *objGroup, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *Mesh {
	welded := map[objRef]uint32{}
	var vertices []core.Vertex
	var indices []uint32
	missingNormals := false

	for _, tri := range g.tris {
		for _, ref := range tri {
			if idx, ok := welded[ref]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Normal: mgl32.Vec3{0, 1, 0}}
			if ref.v >= 0 && ref.v < len(positions) {
				v.Position = positions[ref.v]
			}
			if ref.vn >= 0 && ref.vn < len(normals) {
				v.Normal = normals[ref.vn]
			} else {
				missingNormals = true
			}
			if ref.vt >= 0 && ref.vt < len(uvs) {
				v.UV = uvs[ref.vt]
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, v)
			welded[ref] = idx
			indices = append(indices, idx)
		}
	}

	if missingNormals {
		smoothNormals(vertices, indices)
	}
	return CreateMeshFromData(g.name, vertices, indices)
}

// smoothNormals replaces vertex normals with area-weighted face normal sums.
func smoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// ── MTL loader ───────────────────────────────────────────────────────────────

func loadMTL(path, dir string) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*Material{}
	var cur *Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = DefaultMaterial()
				cur.Name = fields[1]
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}

		switch fields[0] {
		case "Kd":
			if v, ok := parseVec3(fields[1:]); ok {
				cur.Color = core.Color{R: v[0], G: v[1], B: v[2], A: 1}
			}
		case "Ks":
			if v, ok := parseVec3(fields[1:]); ok {
				cur.Specular = core.Color{R: v[0], G: v[1], B: v[2], A: 1}
			}
		case "Ns":
			if len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Shininess = float32(math.Max(1, ns))
			}
		case "d", "Tr":
			if len(fields) >= 2 {
				d, err := strconv.ParseFloat(fields[1], 32)
				if err != nil {
					continue
				}
				if fields[0] == "Tr" {
					d = 1 - d
				}
				if d < 1 {
					cur.Transparent = true
					cur.Opacity = float32(d)
				}
			}
		case "map_Kd":
			if len(fields) >= 2 {
				// options precede the file name; take the last field
				tex, err := LoadTexture(filepath.Join(dir, fields[len(fields)-1]))
				if err == nil {
					cur.Map = tex
				}
			}
		}
	}
	return mats, scanner.Err()
}
