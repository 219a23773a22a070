package observe

import "testing"

func TestParseMode(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"structured", "visual", "hybrid"} {
		m, err := ParseMode(s)
		if err != nil || string(m) != s {
			t.Fatalf("ParseMode(%q) = (%q, %v)", s, m, err)
		}
	}
	if m, err := ParseMode(""); err != nil || m != ModeHybrid {
		t.Fatalf("ParseMode(\"\") = (%q, %v), want hybrid default", m, err)
	}
	if _, err := ParseMode("screenshot"); err == nil {
		t.Fatal("ParseMode accepted unknown mode")
	}
}

func TestZero_shapesByMode(t *testing.T) {
	t.Parallel()
	o := Zero(ModeStructured, 800, 600)
	if o.Structured == nil || o.Visual != nil {
		t.Fatalf("structured zero: got %+v", o)
	}
	if o.State().TotalTasks() != 0 {
		t.Fatal("zero snapshot should have no tasks")
	}

	o = Zero(ModeVisual, 800, 600)
	if o.Structured != nil || o.Visual == nil {
		t.Fatalf("visual zero: got %+v", o)
	}
	if len(o.Visual.Pixels) != 800*600*3 {
		t.Fatalf("visual buffer len = %d, want %d", len(o.Visual.Pixels), 800*600*3)
	}

	o = Zero(ModeHybrid, 4, 2)
	if o.Structured == nil || o.Visual == nil {
		t.Fatalf("hybrid zero: got %+v", o)
	}
}

func TestState_visualOnlyIsZero(t *testing.T) {
	t.Parallel()
	o := Observation{Mode: ModeVisual, Visual: &Frame{Width: 1, Height: 1, Pixels: make([]byte, 3)}}
	s := o.State()
	if s.TotalTasks() != 0 || s.ProjectCount != 0 {
		t.Fatalf("visual-only observation should report zero state, got %+v", s)
	}
}

func TestSummarize_dropsPixelsKeepsStructured(t *testing.T) {
	t.Parallel()
	snap := Snapshot{TaskCounts: [3]int{2, 1, 3}, ProjectCount: 4, CurrentView: ViewBoard}
	snap.PageElements[0] = 1
	o := Observation{
		Mode:       ModeHybrid,
		Structured: &snap,
		Visual:     &Frame{Width: 800, Height: 600, Pixels: make([]byte, 800*600*3)},
	}
	s := Summarize(o)
	if s.Type != "hybrid" {
		t.Fatalf("Type = %q", s.Type)
	}
	if len(s.VisualShape) != 3 || s.VisualShape[0] != 600 || s.VisualShape[1] != 800 || s.VisualShape[2] != 3 {
		t.Fatalf("VisualShape = %v", s.VisualShape)
	}
	if s.TaskCounts == nil || *s.TaskCounts != [3]int{2, 1, 3} {
		t.Fatalf("TaskCounts = %v", s.TaskCounts)
	}
	if s.CurrentView != "board" {
		t.Fatalf("CurrentView = %q", s.CurrentView)
	}
	if len(s.PageElements) != PageElementCount || s.PageElements[0] != 1 {
		t.Fatalf("PageElements = %v", s.PageElements)
	}
}
