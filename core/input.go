package core

// Mouse button and keys as reported by the platform window. The values are
// the GLFW codes, so they pass through unchanged.
const MouseLeft = 0

const (
	KeySpace  = 32
	KeyEscape = 256
	KeyEnter  = 257
	KeyTab    = 258
	KeyRight  = 262
	KeyLeft   = 263
	KeyDown   = 264
	KeyUp     = 265
	KeyF1     = 290
)
