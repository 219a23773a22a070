package reward

import (
	"math"
	"time"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
)

// Breakdown is the named-component decomposition of a single step's reward.
// Total always equals the sum of the seven components.
type Breakdown struct {
	BaseAction        float64 `json:"base_action"`
	TaskCompletion    float64 `json:"task_completion"`
	TaskCreation      float64 `json:"task_creation"`
	ProjectManagement float64 `json:"project_management"`
	EfficiencyBonus   float64 `json:"efficiency_bonus"`
	Collaboration     float64 `json:"collaboration"`
	Penalty           float64 `json:"penalty"`
	Total             float64 `json:"total"`
}

// ComponentSum returns the sum of the seven components, excluding Total.
func (b Breakdown) ComponentSum() float64 {
	return b.BaseAction + b.TaskCompletion + b.TaskCreation +
		b.ProjectManagement + b.EfficiencyBonus + b.Collaboration + b.Penalty
}

// Record is one entry in the engine's bounded action history.
type Record struct {
	Name      string
	Success   bool
	Timestamp time.Time
	Step      int
}

// Stats summarizes the engine's per-episode counters. Read-only snapshot.
type Stats struct {
	EpisodeSeconds   float64 `json:"episode_time"`
	TotalActions     int     `json:"total_actions"`
	InvalidActions   int     `json:"invalid_actions"`
	SuccessRate      float64 `json:"success_rate"`
	TasksCompleted   int     `json:"tasks_completed"`
	TasksCreated     int     `json:"tasks_created"`
	ProjectsCreated  int     `json:"projects_created"`
	CommentsAdded    int     `json:"comments_added"`
	ActionsPerMinute float64 `json:"actions_per_minute"`
}

const (
	// historySize bounds the action ring used for short-horizon patterns.
	historySize = 20
	// deadlineWindow is the fast-episode cutoff for the completion multiplier.
	deadlineWindow = 300 * time.Second
	// quickActionSeconds is the latency threshold for the quick-action bonus.
	quickActionSeconds = 2.0
	// navWindow and navFreeCount bound the excessive-navigation check: more
	// than navFreeCount of the last navWindow prior actions must be
	// navigation before the penalty starts escalating.
	navWindow    = 5
	navFreeCount = 3
)

// efficientSequences are the 3-action workflows that earn the efficiency
// multiplier. First match wins; a step never earns it twice.
var efficientSequences = [][3]string{
	{action.NameCreateNewTask, action.NameSetTaskAssignee, action.NameSetTaskDueDate},
	{action.NameCreateNewProject, action.NameCreateNewTask, action.NameSetTaskAssignee},
	{action.NameOpenTaskDetail, action.NameEditTaskDescription, action.NameAddComment},
}

// Engine is the stateful per-episode reward calculator. It owns the previous
// snapshot used for state deltas and a bounded ring of recent actions. Not
// safe for concurrent use; callers serialize steps per environment instance.
type Engine struct {
	weights        Weights
	timeoutSeconds float64
	now            func() time.Time

	prev         observe.Snapshot
	history      []Record
	episodeStart time.Time

	tasksCompleted  int
	tasksCreated    int
	projectsCreated int
	commentsAdded   int
	invalidActions  int
	totalActions    int

	last Breakdown
}

// NewEngine returns an engine scoring against w. actionTimeoutSeconds is the
// per-step latency above which the timeout penalty applies; it comes from the
// environment config, not the weight set.
func NewEngine(w Weights, actionTimeoutSeconds float64) *Engine {
	e := &Engine{weights: w, timeoutSeconds: actionTimeoutSeconds, now: time.Now}
	e.Reset()
	return e
}

// Weights returns the engine's weight set.
func (e *Engine) Weights() Weights {
	return e.weights
}

// Reset clears all per-episode state: previous snapshot, action ring, counters,
// last breakdown, and the episode-start timestamp. Must be called exactly once
// at the start of every episode or state leaks across episodes.
func (e *Engine) Reset() {
	e.prev = observe.Snapshot{}
	e.history = e.history[:0]
	e.episodeStart = e.now()
	e.tasksCompleted = 0
	e.tasksCreated = 0
	e.projectsCreated = 0
	e.commentsAdded = 0
	e.invalidActions = 0
	e.totalActions = 0
	e.last = Breakdown{}
}

// Score computes the shaped reward for one step: the action taken, whether it
// succeeded, the resulting state snapshot, and the step latency in seconds.
// Pure given inputs and engine state: no I/O, no randomness.
func (e *Engine) Score(actionName string, success bool, snap observe.Snapshot, stepSeconds float64) (float64, Breakdown) {
	e.totalActions++
	var b Breakdown

	if !success {
		b.Penalty += e.weights.InvalidActionPenalty
		e.invalidActions++
	} else {
		b.BaseAction += action.BaseReward(actionName)
	}

	// Task deltas against the previous snapshot.
	if completedDelta := snap.Completed() - e.prev.Completed(); completedDelta > 0 {
		b.TaskCompletion = float64(completedDelta) * e.weights.TaskCompletionReward
		e.tasksCompleted += completedDelta
		// Fast-episode multiplier scales the whole component for this step,
		// not each completed task.
		if e.now().Sub(e.episodeStart) < deadlineWindow {
			b.TaskCompletion *= e.weights.DeadlineBonusMultiplier
		}
	}
	if totalDelta := snap.TotalTasks() - e.prev.TotalTasks(); totalDelta > 0 {
		b.TaskCreation = float64(totalDelta) * e.weights.TaskCreationReward
		e.tasksCreated += totalDelta
	}
	// Assignment bonus applies whenever the action is attempted, independent
	// of the success path above.
	if actionName == action.NameSetTaskAssignee {
		b.TaskCreation += e.weights.TaskAssignmentReward
	}

	// Projects.
	if projectDelta := snap.ProjectCount - e.prev.ProjectCount; projectDelta > 0 {
		b.ProjectManagement = float64(projectDelta) * e.weights.ProjectCreationReward
		e.projectsCreated += projectDelta
	}
	if action.IsOrganization(actionName) {
		b.ProjectManagement += e.weights.ProjectOrganizationReward
	}

	// Efficiency: quick actions and recognized 3-action workflows. The window
	// is the two prior actions plus the current one.
	if stepSeconds < quickActionSeconds {
		b.EfficiencyBonus += e.weights.QuickActionBonus
	}
	if n := len(e.history); n >= 2 {
		window := [3]string{e.history[n-2].Name, e.history[n-1].Name, actionName}
		for _, seq := range efficientSequences {
			if window == seq {
				b.EfficiencyBonus += e.weights.WorkflowEfficiencyMultiplier
				break
			}
		}
	}

	// Collaboration.
	b.Collaboration += e.collaborationReward(actionName)
	if actionName == action.NameAddComment {
		e.commentsAdded++
	}

	// Time penalties. The navigation window covers records prior to this step.
	if stepSeconds > e.timeoutSeconds {
		b.Penalty += e.weights.TimeoutPenalty
	}
	nav := 0
	start := len(e.history) - navWindow
	if start < 0 {
		start = 0
	}
	for _, r := range e.history[start:] {
		if action.CountsTowardNavigationPenalty(r.Name) {
			nav++
		}
	}
	if nav > navFreeCount {
		b.Penalty += e.weights.NavigationPenalty * float64(nav-navFreeCount)
	}

	// State tracking: full snapshot replace, then append to the bounded ring.
	e.prev = snap
	e.history = append(e.history, Record{
		Name:      actionName,
		Success:   success,
		Timestamp: e.now(),
		Step:      e.totalActions,
	})
	if len(e.history) > historySize {
		e.history = e.history[len(e.history)-historySize:]
	}

	b.Total = b.ComponentSum()
	e.last = b
	return b.Total, b
}

func (e *Engine) collaborationReward(name string) float64 {
	switch name {
	case action.NameAddComment:
		return e.weights.CommentCreationReward
	case "reply_to_comment":
		return e.weights.CommentCreationReward * 0.8
	case "mention_user", "add_project_member":
		return e.weights.TeamInteractionBonus
	case action.NameSetTaskAssignee:
		return e.weights.TeamInteractionBonus * 0.5
	default:
		return 0
	}
}

// LastBreakdown returns the breakdown of the most recent step. Read-only;
// overwritten by the next Score call.
func (e *Engine) LastBreakdown() Breakdown {
	return e.last
}

// EpisodeStats derives the current episode's counters and rates. Does not
// mutate engine state.
func (e *Engine) EpisodeStats() Stats {
	elapsed := e.now().Sub(e.episodeStart).Seconds()
	successRate := float64(e.totalActions-e.invalidActions) / math.Max(1, float64(e.totalActions))
	return Stats{
		EpisodeSeconds:   elapsed,
		TotalActions:     e.totalActions,
		InvalidActions:   e.invalidActions,
		SuccessRate:      successRate,
		TasksCompleted:   e.tasksCompleted,
		TasksCreated:     e.tasksCreated,
		ProjectsCreated:  e.projectsCreated,
		CommentsAdded:    e.commentsAdded,
		ActionsPerMinute: float64(e.totalActions) / math.Max(1, elapsed/60),
	}
}

// EpisodeEndBonus computes the one-shot end-of-episode performance bonus.
// Call once per episode, after the final Score and before sealing the total.
func (e *Engine) EpisodeEndBonus() float64 {
	stats := e.EpisodeStats()
	bonus := 0.0

	// Completion rate, up to 10 points at 100%.
	if stats.TasksCompleted > 0 {
		completionRate := float64(stats.TasksCompleted) / math.Max(1, float64(stats.TasksCreated))
		bonus += completionRate * 10.0
	}

	// Success rate above 80%, up to 5 points at 100%.
	if stats.SuccessRate > 0.8 {
		bonus += (stats.SuccessRate - 0.8) * 25.0
	}

	// Productivity above 2 actions/minute, capped at 5.
	if stats.ActionsPerMinute > 2.0 {
		bonus += math.Min(5.0, (stats.ActionsPerMinute-2.0)*2.0)
	}

	// Collaboration, 0.5 per comment, capped at 3.
	if stats.CommentsAdded > 0 {
		bonus += math.Min(3.0, float64(stats.CommentsAdded)*0.5)
	}

	return bonus
}
