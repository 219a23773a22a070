package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

// Stub is a deterministic in-memory model of the driven application. It
// keeps just enough state for reward shaping to behave like a live session:
// task counts by status, project count, and the current view. Used for dry
// runs and tests; no browser or network is involved.
type Stub struct {
	mu sync.Mutex

	BaseURL string // reported by CurrentURL; defaults to stub://app

	pending   int
	active    int
	completed int
	projects  int
	comments  int
	view      observe.View
	path      string
	loggedIn  bool
	closed    bool

	// FrameWidth and FrameHeight size the synthetic screenshot for visual
	// and hybrid observation modes.
	FrameWidth  int
	FrameHeight int
}

// NewStub returns an empty application: no projects, no tasks, dashboard
// view.
func NewStub() *Stub {
	return &Stub{
		BaseURL:     "stub://app",
		FrameWidth:  64,
		FrameHeight: 48,
	}
}

func (s *Stub) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = true
	s.path = "/"
	s.view = observe.ViewDashboard
	return nil
}

func (s *Stub) Navigate(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	return nil
}

// ExecuteAction applies the action to the in-memory model. Actions that need
// a task or project fail (success=false) when none exists, mirroring how the
// real application rejects them; the driver itself never errors here.
func (s *Stub) ExecuteAction(ctx context.Context, spec action.Spec) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, fmt.Errorf("stub driver closed")
	}

	switch spec.Name {
	case "navigate_to_dashboard":
		s.view = observe.ViewDashboard
		s.path = "/"
	case "navigate_to_projects", "navigate_to_project_list":
		s.view = observe.ViewList
		s.path = "/projects"
	case "navigate_to_project_board":
		s.view = observe.ViewBoard
		s.path = "/projects/board"
	case "navigate_to_project_timeline":
		s.view = observe.ViewTimeline
		s.path = "/projects/timeline"
	case "navigate_to_project_calendar":
		s.view = observe.ViewCalendar
		s.path = "/projects/calendar"
	case "switch_workspace", "scroll_up", "scroll_down", "refresh_page":
		// View-neutral navigation.

	case action.NameCreateNewProject:
		s.projects++
	case "duplicate_project":
		if s.projects == 0 {
			return false, nil
		}
		s.projects++
	case "delete_project", "archive_project":
		if s.projects == 0 {
			return false, nil
		}
		s.projects--
	case "open_project":
		if s.projects == 0 {
			return false, nil
		}
		s.view = observe.ViewBoard
		s.path = "/projects/1"
	case "edit_project", "change_project_color", "add_project_member",
		"remove_project_member", "set_project_status", "convert_to_project":
		if s.projects == 0 {
			return false, nil
		}

	case action.NameCreateNewTask:
		s.pending++
	case "duplicate_task":
		if s.totalTasks() == 0 {
			return false, nil
		}
		s.pending++
	case "create_subtask":
		if s.totalTasks() == 0 {
			return false, nil
		}
		s.pending++
	case "delete_task":
		switch {
		case s.pending > 0:
			s.pending--
		case s.active > 0:
			s.active--
		case s.completed > 0:
			s.completed--
		default:
			return false, nil
		}
	case "change_task_status_todo":
		if s.active == 0 {
			return false, nil
		}
		s.active--
		s.pending++
	case "change_task_status_in_progress":
		if s.pending == 0 {
			return false, nil
		}
		s.pending--
		s.active++
	case "change_task_status_completed":
		switch {
		case s.active > 0:
			s.active--
		case s.pending > 0:
			s.pending--
		default:
			return false, nil
		}
		s.completed++

	case action.NameAddComment, "reply_to_comment":
		if s.totalTasks() == 0 {
			return false, nil
		}
		s.comments++
	case "edit_comment", "delete_comment":
		if s.comments == 0 {
			return false, nil
		}
		if spec.Name == "delete_comment" {
			s.comments--
		}

	default:
		// Remaining task, collaboration, and view actions succeed whenever
		// there is a task to act on; pure view actions always succeed.
		if spec.Category == action.CategoryTask || spec.Category == action.CategoryCollaboration {
			if s.totalTasks() == 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

func (s *Stub) totalTasks() int {
	return s.pending + s.active + s.completed
}

func (s *Stub) Observe(ctx context.Context, mode observe.Mode) (observe.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return observe.Observation{}, fmt.Errorf("stub driver closed")
	}

	obs := observe.Observation{Mode: mode}
	if mode == observe.ModeStructured || mode == observe.ModeHybrid {
		snap := observe.Snapshot{
			TaskCounts:   [3]int{s.pending, s.active, s.completed},
			ProjectCount: s.projects,
			CurrentView:  s.view,
		}
		// Element visibility tracks what the current view would render.
		snap.PageElements[0] = 1 // header
		snap.PageElements[1] = 1 // sidebar
		if s.projects > 0 {
			snap.PageElements[2] = 1
		}
		if s.totalTasks() > 0 {
			snap.PageElements[3] = 1
		}
		snap.PageElements[4+int(s.view)] = 1
		obs.Structured = &snap
	}
	if mode == observe.ModeVisual || mode == observe.ModeHybrid {
		obs.Visual = &observe.Frame{
			Width:  s.FrameWidth,
			Height: s.FrameHeight,
			Pixels: make([]byte, s.FrameWidth*s.FrameHeight*3),
		}
	}
	return obs, nil
}

func (s *Stub) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.BaseURL + s.path, nil
}

func (s *Stub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
