package renderer

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/scene"
)

// drawList is one frame's visible nodes bucketed by render pass.
type drawList struct {
	opaque      []*scene.Node
	transparent []*scene.Node // sorted far to near
	points      []*scene.Node
	culled      int
}

// buildDrawList buckets the visible nodes of s. Meshes whose world bounds
// fall outside the view frustum are dropped; point clouds are always kept.
func buildDrawList(s *scene.Scene, eye mgl32.Vec3, viewProj mgl32.Mat4) drawList {
	var list drawList
	frustum := scene.FrustumFromMatrix(viewProj)
	for _, n := range s.VisibleNodes() {
		if n.Points != nil {
			list.points = append(list.points, n)
		}
		if n.Mesh == nil {
			continue
		}
		if !n.Mesh.Bounds().Transform(n.WorldMatrix()).Intersects(&frustum) {
			list.culled++
			continue
		}
		if m := n.Mesh.Material; m != nil && m.Transparent {
			list.transparent = append(list.transparent, n)
		} else {
			list.opaque = append(list.opaque, n)
		}
	}

	dist := make(map[*scene.Node]float32, len(list.transparent))
	for _, n := range list.transparent {
		dist[n] = n.WorldMatrix().Col(3).Vec3().Sub(eye).LenSqr()
	}
	sort.SliceStable(list.transparent, func(i, j int) bool {
		return dist[list.transparent[i]] > dist[list.transparent[j]]
	})
	return list
}
