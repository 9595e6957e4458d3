package globe

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a script.
type testStep struct {
	Action  string  `json:"action"`
	Label   string  `json:"label,omitempty"`
	Year    int     `json:"year,omitempty"`
	Visible *bool   `json:"visible,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	FromX   float64 `json:"fromX,omitempty"`
	FromY   float64 `json:"fromY,omitempty"`
	ToX     float64 `json:"toX,omitempty"`
	ToY     float64 `json:"toY,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure of a script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"year": true, "visible": true, "toggle": true, "click": true,
	"drag": true, "wait": true, "screenshot": true,
}

// TestRunner sequences year changes, visibility changes, injected input and
// screenshots across frames for automated visual testing. Attach it to an
// App with SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON script:
//
//	{"steps": [
//	  {"action": "year", "year": 1900},
//	  {"action": "visible", "visible": false},
//	  {"action": "toggle"},
//	  {"action": "drag", "fromX": 400, "fromY": 300, "toX": 600, "toY": 300, "frames": 20},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "after-drag"}
//	]}
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
		if st.Action == "visible" && st.Visible == nil {
			return nil, fmt.Errorf("parse test script: step %d: visible needs a value", i)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from App.Update.
func (r *TestRunner) step(a *App) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if a.controls.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "year":
		a.SetYear(st.Year)
	case "visible":
		a.SetVisible(*st.Visible)
	case "toggle":
		a.ToggleVisible()
	case "screenshot":
		a.scene.Screenshot(st.Label)
	case "click":
		a.controls.InjectClick(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 3 {
			frames = 3
		}
		a.controls.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && a.controls.Pending() == 0 {
		r.done = true
	}
}
