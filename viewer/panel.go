package viewer

import (
	"fmt"
	"math"
	"strings"

	"scene-viewer/core"
)

// Control is one row of the debug panel.
type Control interface {
	Label() string
	Value() string
	// Step nudges the control by dir (-1 or +1).
	Step(dir int)
	// Activate is the Space/Enter action.
	Activate()
}

// Slider edits a bound number. Writes are clamped to [Min, Max] and snapped
// to the nearest multiple of Increment from Min.
type Slider struct {
	Name      string
	Min, Max  float64
	Increment float64
	Precision int
	Get       func() float64
	Set       func(float64)
}

func (s *Slider) Label() string { return s.Name }

func (s *Slider) Value() string {
	return fmt.Sprintf("%.*f", s.Precision, s.Get())
}

// SetValue clamps and snaps v, writes it through and returns what was stored.
func (s *Slider) SetValue(v float64) float64 {
	v = math.Max(s.Min, math.Min(s.Max, v))
	if s.Increment > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Increment)*s.Increment
		v = math.Max(s.Min, math.Min(s.Max, v))
	}
	s.Set(v)
	return v
}

func (s *Slider) Step(dir int) {
	s.SetValue(s.Get() + float64(dir)*s.Increment)
}

func (s *Slider) Activate() {}

// Toggle edits a bound flag. OnChange, if set, runs after every flip.
type Toggle struct {
	Name     string
	Get      func() bool
	Set      func(bool)
	OnChange func(bool)
}

func (t *Toggle) Label() string { return t.Name }

func (t *Toggle) Value() string {
	if t.Get() {
		return "[x]"
	}
	return "[ ]"
}

func (t *Toggle) Step(int) {}

func (t *Toggle) Activate() {
	v := !t.Get()
	t.Set(v)
	if t.OnChange != nil {
		t.OnChange(v)
	}
}

type Folder struct {
	Name     string
	Controls []Control
}

// Panel is a keyboard-driven list of folders. One row is selected at a time.
type Panel struct {
	Visible  bool
	Folders  []*Folder
	selected int
}

func (p *Panel) controls() []Control {
	var all []Control
	for _, f := range p.Folders {
		all = append(all, f.Controls...)
	}
	return all
}

// Selected returns the highlighted control, or nil for an empty panel.
func (p *Panel) Selected() Control {
	all := p.controls()
	if len(all) == 0 {
		return nil
	}
	return all[p.selected%len(all)]
}

// HandleKey applies a key press and reports whether the panel used it.
// F1 works while hidden; every other key needs the panel visible.
func (p *Panel) HandleKey(key int) bool {
	if key == core.KeyF1 {
		p.Visible = !p.Visible
		return true
	}
	all := p.controls()
	if !p.Visible || len(all) == 0 {
		return false
	}
	switch key {
	case core.KeyTab, core.KeyDown:
		p.selected = (p.selected + 1) % len(all)
	case core.KeyUp:
		p.selected = (p.selected + len(all) - 1) % len(all)
	case core.KeyLeft:
		all[p.selected].Step(-1)
	case core.KeyRight:
		all[p.selected].Step(1)
	case core.KeySpace, core.KeyEnter:
		all[p.selected].Activate()
	default:
		return false
	}
	return true
}

// Lines renders the panel as text rows; nil while hidden.
func (p *Panel) Lines() []string {
	if !p.Visible {
		return nil
	}
	width := 0
	for _, c := range p.controls() {
		width = max(width, len(c.Label()))
	}

	var lines []string
	row := 0
	for _, f := range p.Folders {
		lines = append(lines, f.Name)
		for _, c := range f.Controls {
			marker := " "
			if row == p.selected {
				marker = ">"
			}
			lines = append(lines, fmt.Sprintf("%s %-*s  %s", marker, width, c.Label(), c.Value()))
			row++
		}
	}
	lines = append(lines, strings.Repeat("-", width+10), "F1 hide  Tab select")
	return lines
}

const (
	cameraZMin  = -10
	cameraZMax  = 10
	cameraZStep = 0.1
)

// newCameraPanel binds the "Camera" folder to the state's camera z and the
// shake flag. Turning shake on hands the camera over from the orbit controls.
func newCameraPanel(st *State) *Panel {
	cameraZ := &Slider{
		Name:      "Camera Z",
		Min:       cameraZMin,
		Max:       cameraZMax,
		Increment: cameraZStep,
		Precision: 1,
		Get:       func() float64 { return float64(st.Camera.Position.Z()) },
		Set:       func(v float64) { st.Camera.Position[2] = float32(v) },
	}
	shake := &Toggle{
		Name: "Shake",
		Get:  func() bool { return st.Controls.CameraShake },
		Set:  func(v bool) { st.Controls.CameraShake = v },
		OnChange: func(v bool) {
			st.Orbit.Enabled = !v
			if v {
				st.Orbit.EndDrag()
			}
			st.Log.Debugf("camera shake %v", v)
		},
	}
	return &Panel{
		Visible: true,
		Folders: []*Folder{{Name: "Camera", Controls: []Control{cameraZ, shake}}},
	}
}
