package viewer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-viewer/core"
)

func TestSliderClampAndSnap(t *testing.T) {
	var v float64
	s := &Slider{Min: -10, Max: 10, Increment: 0.1, Get: func() float64 { return v }, Set: func(x float64) { v = x }}

	assert.Equal(t, 10.0, s.SetValue(15))
	assert.Equal(t, -10.0, s.SetValue(-99))
	assert.InDelta(t, 1.2, s.SetValue(1.234), 1e-9)
	assert.InDelta(t, -3.5, s.SetValue(-3.46), 1e-9)
	assert.InDelta(t, -3.5, v, 1e-9)
}

func TestCameraZSlider(t *testing.T) {
	st, _ := newTestState(t)
	require.NotNil(t, st.Panel.Selected())
	assert.Equal(t, "Camera Z", st.Panel.Selected().Label())

	assert.True(t, st.HandleKey(core.KeyRight))
	assert.InDelta(t, 5.1, st.Camera.Position.Z(), 1e-5)
	assert.True(t, st.HandleKey(core.KeyLeft))
	assert.True(t, st.HandleKey(core.KeyLeft))
	assert.InDelta(t, 4.9, st.Camera.Position.Z(), 1e-5)

	// repeated steps stop at the range limit
	for i := 0; i < 200; i++ {
		st.HandleKey(core.KeyRight)
	}
	assert.InDelta(t, 10, st.Camera.Position.Z(), 1e-5)
	assert.Equal(t, "10.0", st.Panel.Selected().Value())
}

func TestShakeToggle(t *testing.T) {
	st, _ := newTestState(t)

	assert.True(t, st.HandleKey(core.KeyTab))
	assert.Equal(t, "Shake", st.Panel.Selected().Label())
	assert.Equal(t, "[ ]", st.Panel.Selected().Value())

	assert.True(t, st.HandleKey(core.KeyEnter))
	assert.True(t, st.Controls.CameraShake)
	assert.False(t, st.Orbit.Enabled)
	assert.Equal(t, "[x]", st.Panel.Selected().Value())

	assert.True(t, st.HandleKey(core.KeySpace))
	assert.False(t, st.Controls.CameraShake)
	assert.True(t, st.Orbit.Enabled)

	// selection wraps both ways
	assert.True(t, st.HandleKey(core.KeyDown))
	assert.Equal(t, "Camera Z", st.Panel.Selected().Label())
	assert.True(t, st.HandleKey(core.KeyUp))
	assert.Equal(t, "Shake", st.Panel.Selected().Label())
}

func TestPanelVisibility(t *testing.T) {
	st, _ := newTestState(t)

	lines := st.Panel.Lines()
	require.NotEmpty(t, lines)
	assert.Equal(t, "Camera", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "> Camera Z"))
	assert.True(t, strings.HasSuffix(lines[1], "5.0"))
	assert.Contains(t, lines[2], "Shake")

	assert.True(t, st.HandleKey(core.KeyF1))
	assert.Nil(t, st.Panel.Lines())
	assert.False(t, st.HandleKey(core.KeyRight), "hidden panel ignores edits")
	assert.InDelta(t, 5, st.Camera.Position.Z(), 1e-6)

	assert.True(t, st.HandleKey(core.KeyF1))
	assert.NotNil(t, st.Panel.Lines())
	assert.False(t, st.HandleKey('A'))
}
