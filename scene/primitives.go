package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
)

// CreateSphere builds a UV sphere. U runs around the equator and V from the
// north pole down, so an equirectangular image maps straight onto it.
func CreateSphere(radius float32, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	vertices := make([]core.Vertex, 0, (widthSegments+1)*(heightSegments+1))
	indices := make([]uint32, 0, widthSegments*heightSegments*6)

	for ring := 0; ring <= heightSegments; ring++ {
		v := float32(ring) / float32(heightSegments)
		phi := v * math32.Pi
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)

		for seg := 0; seg <= widthSegments; seg++ {
			u := float32(seg) / float32(widthSegments)
			theta := u * 2 * math32.Pi

			normal := mgl32.Vec3{
				-math32.Cos(theta) * sinPhi,
				cosPhi,
				math32.Sin(theta) * sinPhi,
			}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       mgl32.Vec2{u, 1 - v},
			})
		}
	}

	stride := uint32(widthSegments + 1)
	for ring := 0; ring < heightSegments; ring++ {
		for seg := 0; seg < widthSegments; seg++ {
			a := uint32(ring)*stride + uint32(seg)
			b := a + stride
			if ring != 0 {
				indices = append(indices, a, b, a+1)
			}
			if ring != heightSegments-1 {
				indices = append(indices, a+1, b, b+1)
			}
		}
	}

	return CreateMeshFromData("Sphere", vertices, indices)
}
