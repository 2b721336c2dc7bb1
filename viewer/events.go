package viewer

import "scene-viewer/scene"

// Event is a completion delivered to the animation loop. Producers run on
// their own goroutines; every Event is applied on the loop goroutine.
type Event interface {
	isEvent()
}

// AssetLoaded reports the outcome of one Loader request. Exactly one of
// Nodes, Texture or Err is meaningful for a given Kind.
type AssetLoaded struct {
	ID      string
	Kind    AssetKind
	Path    string
	Nodes   []*scene.Node
	Texture *scene.Texture
	Err     error
}

// ShaderChanged carries freshly read shader sources from the watcher.
type ShaderChanged struct {
	Vertex   string
	Fragment string
	Err      error
}

func (AssetLoaded) isEvent()   {}
func (ShaderChanged) isEvent() {}

const defaultQueueSize = 64

// EventQueue hands events from background producers to the loop.
type EventQueue struct {
	ch chan Event
}

func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &EventQueue{ch: make(chan Event, size)}
}

// Post enqueues ev, blocking while the queue is full.
func (q *EventQueue) Post(ev Event) {
	q.ch <- ev
}

// Drain returns every event queued so far without blocking.
func (q *EventQueue) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-q.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
