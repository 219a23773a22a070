// Package observe defines the observation types produced by the state
// observer collaborator and consumed by the reward engine and episode logs.
package observe

import "fmt"

// View enumerates the application views a snapshot can report.
type View int

const (
	ViewDashboard View = iota
	ViewList
	ViewBoard
	ViewTimeline
	ViewCalendar
)

func (v View) String() string {
	switch v {
	case ViewDashboard:
		return "dashboard"
	case ViewList:
		return "list"
	case ViewBoard:
		return "board"
	case ViewTimeline:
		return "timeline"
	case ViewCalendar:
		return "calendar"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// ParseView maps a view name reported by a driver back to its enum value.
// Unknown names fall back to the dashboard view rather than failing the
// step; the view only feeds reward shaping.
func ParseView(s string) View {
	switch s {
	case "list":
		return ViewList
	case "board":
		return ViewBoard
	case "timeline":
		return ViewTimeline
	case "calendar":
		return ViewCalendar
	default:
		return ViewDashboard
	}
}

// PageElementCount is the fixed length of the element-visibility vector.
const PageElementCount = 20

// Snapshot is a point-in-time structured description of the driven app's
// observable state. It is a value; the reward engine owns "previous" state by
// keeping its own copy between steps.
type Snapshot struct {
	// TaskCounts holds task counts by status: pending, active, completed.
	TaskCounts   [3]int
	ProjectCount int
	CurrentView  View
	// PageElements holds visibility flags for key UI elements, 0 or 1.
	PageElements [PageElementCount]float32
}

// TotalTasks returns the sum of all three status buckets.
func (s Snapshot) TotalTasks() int {
	return s.TaskCounts[0] + s.TaskCounts[1] + s.TaskCounts[2]
}

// Completed returns the completed-task count.
func (s Snapshot) Completed() int {
	return s.TaskCounts[2]
}

// Mode selects what the observer captures each step.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeVisual     Mode = "visual"
	ModeHybrid     Mode = "hybrid"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStructured, ModeVisual, ModeHybrid:
		return Mode(s), nil
	case "":
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown observation mode %q (want structured, visual, or hybrid)", s)
	}
}

// Frame is a raw RGB screenshot buffer.
type Frame struct {
	Width  int
	Height int
	// Pixels is row-major RGB, len = Width*Height*3.
	Pixels []byte
}

// Observation is the per-step output of the observer collaborator. Structured
// is set for structured and hybrid modes; Visual for visual and hybrid modes.
type Observation struct {
	Mode       Mode
	Structured *Snapshot
	Visual     *Frame
}

// State returns the structured snapshot for reward calculation. Visual-only
// observations carry no structured state and yield a zero snapshot, matching
// how deltas are suppressed when the observer cannot report counts.
func (o Observation) State() Snapshot {
	if o.Structured != nil {
		return *o.Structured
	}
	return Snapshot{}
}

// Zero returns the all-zero default observation for a mode, used when the
// observer collaborator fails mid-step.
func Zero(mode Mode, width, height int) Observation {
	o := Observation{Mode: mode}
	if mode == ModeStructured || mode == ModeHybrid {
		o.Structured = &Snapshot{}
	}
	if mode == ModeVisual || mode == ModeHybrid {
		o.Visual = &Frame{Width: width, Height: height, Pixels: make([]byte, width*height*3)}
	}
	return o
}
