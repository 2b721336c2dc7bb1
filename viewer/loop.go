package viewer

import (
	"fmt"
	"time"
)

const (
	// timeStep is added to the shader's time uniform every tick.
	timeStep = 0.01

	shakeGain = 0.05
	shakeLerp = 0.1
)

// Tick advances the scene by one frame and submits it for drawing.
func (st *State) Tick(now time.Time) error {
	st.ShaderMaterial.Shader.Uniform("time").Value += timeStep

	if st.ModelReady {
		st.Particles.Perturb(float64(now.UnixMilli()) * 0.001)
	}
	st.AccentLight.Position = st.Particles.Point(0)

	if st.Controls.CameraShake {
		p := st.Camera.Position
		p[0] += (st.mouseX*shakeGain - p[0]) * shakeLerp
		p[1] += (-st.mouseY*shakeGain - p[1]) * shakeLerp
		st.Camera.SetPosition(p)
		st.Camera.LookAt(st.Scene.Position())
	}

	if st.Renderer == nil {
		return nil
	}
	if err := st.Renderer.Render(st.Scene, st.Camera); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	return nil
}

// DrainEvents applies every queued event without blocking and reports how
// many were handled.
func (st *State) DrainEvents() int {
	events := st.Events.Drain()
	for _, ev := range events {
		st.Apply(ev)
	}
	return len(events)
}

// Apply folds one background completion into the state.
func (st *State) Apply(ev Event) {
	switch ev := ev.(type) {
	case AssetLoaded:
		st.applyAsset(ev)
	case ShaderChanged:
		st.applyShader(ev)
	default:
		st.Log.Warnf("unhandled event %T", ev)
	}
}
