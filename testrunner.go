package canvas

import (
	"encoding/json"
	"fmt"
)

// testStep is a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Text   string  `json:"text,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	FromX  float32 `json:"fromX,omitempty"`
	FromY  float32 `json:"fromY,omitempty"`
	ToX    float32 `json:"toX,omitempty"`
	ToY    float32 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, typed text and screenshot requests
// across frames for automated UI tests. Attach it with SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script of the form
//
//	{"steps": [{"action": "click", "x": 10, "y": 20}, {"action": "type", "text": "hi"}]}
//
// Supported actions are click, drag, type, wait and screenshot.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("canvas: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("canvas: parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "type", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("canvas: parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches runner; its next step runs at the start of every
// Update. Pass nil to detach.
func (r *Renderer) SetTestRunner(runner *TestRunner) {
	r.runner = runner
}

// Done reports whether every step has been executed.
func (t *TestRunner) Done() bool {
	return t.done
}

// step advances the runner by one frame.
func (t *TestRunner) step(r *Renderer) {
	if t.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(r.injectQueue) > 0 {
		return
	}
	if t.waitCount > 0 {
		t.waitCount--
		return
	}
	if t.cursor >= len(t.steps) {
		t.done = true
		return
	}

	st := t.steps[t.cursor]
	t.cursor++

	switch st.Action {
	case "screenshot":
		r.Screenshot(st.Label)
	case "click":
		r.InjectClick(st.X, st.Y)
	case "drag":
		r.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "type":
		r.InputChars([]rune(st.Text)...)
	case "wait":
		if st.Frames > 0 {
			t.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if t.cursor >= len(t.steps) && t.waitCount == 0 && len(r.injectQueue) == 0 {
		t.done = true
	}
}

// Screenshot queues a labeled capture request. The display shell drains
// requests with TakeScreenshotRequests after drawing the frame.
func (r *Renderer) Screenshot(label string) {
	r.screenshots = append(r.screenshots, label)
}

// TakeScreenshotRequests returns and clears the queued screenshot labels.
func (r *Renderer) TakeScreenshotRequests() []string {
	if len(r.screenshots) == 0 {
		return nil
	}
	out := r.screenshots
	r.screenshots = nil
	return out
}
