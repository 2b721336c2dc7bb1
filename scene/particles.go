package scene

import (
	"math"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
)

// ParticleCount is the fixed size of every PointCloud.
const ParticleCount = 30

var (
	// HighlightColor marks point 0, the one the accent light rides on.
	HighlightColor = core.Color{R: 0.6, G: 0, B: 1, A: 1}
	// PointColor is shared by every other point.
	PointColor = core.ColorYellow
)

// PointCloud is a fixed-size particle buffer rendered as camera-facing
// sprites. Positions and Colors are flat xyz/rgb triples allocated once;
// the renderer re-reads them every frame.
type PointCloud struct {
	Positions []float32
	Colors    []float32

	// Rendering hints
	Size            float32 // world-space sprite size
	SizeAttenuation bool    // shrink with distance
	Additive        bool    // additive blending
	AlphaTest       float32 // discard sprite texels with alpha below this
	DepthWrite      bool
	Sprite          *Texture // nil draws a soft round point

	// GPUData is set by the renderer backend.
	GPUData interface{}
}

// NewPointCloud seeds ParticleCount points on a sphere of the given radius.
// theta and phi are drawn independently from [0, 2π), so the spread is not
// uniform over the surface.
func NewPointCloud(radius float32, rng *rand.Rand) *PointCloud {
	pc := &PointCloud{
		Positions:       make([]float32, ParticleCount*3),
		Colors:          make([]float32, ParticleCount*3),
		Size:            0.5,
		SizeAttenuation: true,
		Additive:        true,
		AlphaTest:       0.5,
	}
	for i := 0; i < ParticleCount; i++ {
		theta := rng.Float32() * 2 * math32.Pi
		phi := rng.Float32() * 2 * math32.Pi
		pc.Positions[i*3] = radius * math32.Sin(theta) * math32.Cos(phi)
		pc.Positions[i*3+1] = radius * math32.Sin(theta) * math32.Sin(phi)
		pc.Positions[i*3+2] = radius * math32.Cos(theta)

		c := PointColor
		if i == 0 {
			c = HighlightColor
		}
		pc.Colors[i*3], pc.Colors[i*3+1], pc.Colors[i*3+2] = c.R, c.G, c.B
	}
	return pc
}

// Count returns the number of points.
func (pc *PointCloud) Count() int { return len(pc.Positions) / 3 }

// Point returns the position of point i.
func (pc *PointCloud) Point(i int) mgl32.Vec3 {
	return mgl32.Vec3{pc.Positions[i*3], pc.Positions[i*3+1], pc.Positions[i*3+2]}
}

// Color returns the color of point i.
func (pc *PointCloud) Color(i int) core.Color {
	return core.Color{R: pc.Colors[i*3], G: pc.Colors[i*3+1], B: pc.Colors[i*3+2], A: 1}
}

// Perturb nudges every point by a small time-dependent offset. The offsets
// accumulate: points wander away from the sphere instead of oscillating
// around their seeds. t is wall-clock seconds; the phase term uses the flat
// buffer offset of each triple (0, 3, 6, ...).
func (pc *PointCloud) Perturb(t float64) {
	for i := 0; i < len(pc.Positions); i += 3 {
		phase := t + float64(i)*0.1
		s, c := math.Sincos(phase)
		pc.Positions[i] += float32(s * 0.01)
		pc.Positions[i+1] += float32(c * 0.01)
		pc.Positions[i+2] += float32(s * c * 0.01)
	}
}
