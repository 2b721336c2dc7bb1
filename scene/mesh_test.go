package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSphere(t *testing.T) {
	m := CreateSphere(2, 32, 16)

	require.Len(t, m.Vertices, 33*17)
	// the pole rings contribute one triangle per segment instead of two
	assert.Equal(t, 32*16*2-2*32, m.TriangleCount())
	for _, v := range m.Vertices {
		assert.InDelta(t, 2, v.Position.Len(), 1e-4)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
	}
}

func TestMeshScaleMirrors(t *testing.T) {
	m := CreateSphere(1, 8, 4)
	want := m.Vertices[10]

	m.Scale(-1, 1, 1)

	got := m.Vertices[10]
	assert.Equal(t, -want.Position.X(), got.Position.X())
	assert.Equal(t, want.Position.Y(), got.Position.Y())
	assert.Equal(t, -want.Normal.X(), got.Normal.X())
	assert.Equal(t, uint64(1), m.Revision)
}

func TestCreateBox(t *testing.T) {
	m := CreateBox(2, 4, 6)
	assert.Len(t, m.Vertices, 24)
	assert.Equal(t, 12, m.TriangleCount())
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, abs32(v.Position.X()), 1e-6)
		assert.InDelta(t, 2, abs32(v.Position.Y()), 1e-6)
		assert.InDelta(t, 3, abs32(v.Position.Z()), 1e-6)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
