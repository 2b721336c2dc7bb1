package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"scene-viewer/core"
)

const pointerLimit = 50

// HandlePointerMove takes window coordinates. With shake on it records the
// clamped offset from the viewport centre; otherwise it feeds the orbit drag.
func (st *State) HandlePointerMove(x, y float64) {
	if st.Controls.CameraShake {
		st.mouseX = mgl32.Clamp((float32(x)-st.halfW)/2, -pointerLimit, pointerLimit)
		st.mouseY = mgl32.Clamp((float32(y)-st.halfH)/2, -pointerLimit, pointerLimit)
		return
	}
	st.Orbit.Drag(x, y)
}

func (st *State) HandleMouseButton(button int, pressed bool, x, y float64) {
	if button != core.MouseLeft {
		return
	}
	if !pressed {
		st.Orbit.EndDrag()
		return
	}
	if !st.Controls.CameraShake {
		st.Orbit.BeginDrag(x, y)
	}
}

func (st *State) HandleScroll(dy float64) {
	if st.Controls.CameraShake {
		return
	}
	st.Orbit.Zoom(float32(dy))
}

// HandleResize follows a framebuffer resize. The pointer centre is only
// refreshed while shake is on, so it goes stale otherwise.
func (st *State) HandleResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if st.Controls.CameraShake {
		st.halfW = float32(width) / 2
		st.halfH = float32(height) / 2
	}
	st.Camera.SetAspect(width, height)
	if st.Surface != nil {
		st.Surface.SetSize(width, height)
	}
}

// HandleKey routes a key press to the debug panel.
func (st *State) HandleKey(key int) bool {
	return st.Panel.HandleKey(key)
}
