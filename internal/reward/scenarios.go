package reward

import "sort"

// Scenario names for the built-in presets.
const (
	ScenarioEfficiency      = "efficiency-training"
	ScenarioCollaboration   = "collaboration"
	ScenarioProjectCreation = "project-creation"
)

// scenarios holds the built-in weight presets. Each preset starts from the
// defaults and overrides the coefficients the objective cares about.
var scenarios = map[string]Weights{
	ScenarioEfficiency: func() Weights {
		w := DefaultWeights()
		w.TaskCompletionReward = 15.0
		w.TaskCreationReward = 3.0
		w.ProjectCreationReward = 8.0
		w.QuickActionBonus = 1.0
		w.WorkflowEfficiencyMultiplier = 2.0
		w.InvalidActionPenalty = -2.0
		w.TimeoutPenalty = -8.0
		w.NavigationPenalty = -0.2
		return w
	}(),
	ScenarioCollaboration: func() Weights {
		w := DefaultWeights()
		w.CommentCreationReward = 5.0
		w.TeamInteractionBonus = 4.0
		w.TaskAssignmentReward = 3.0
		w.TaskCompletionReward = 8.0
		w.ProjectCreationReward = 6.0
		w.InvalidActionPenalty = -1.0
		return w
	}(),
	ScenarioProjectCreation: func() Weights {
		w := DefaultWeights()
		w.ProjectCreationReward = 20.0
		w.ProjectOrganizationReward = 8.0
		w.TaskCreationReward = 5.0
		w.TaskCompletionReward = 6.0
		w.WorkflowEfficiencyMultiplier = 1.5
		w.InvalidActionPenalty = -1.5
		return w
	}(),
}

// ForScenario returns the weight preset for name. Unknown names fail soft:
// the default weights are returned with ok=false so the caller can log a
// warning and continue. Safe for concurrent use; the table is never mutated.
func ForScenario(name string) (w Weights, ok bool) {
	if w, ok := scenarios[name]; ok {
		return w, true
	}
	return DefaultWeights(), false
}

// ScenarioNames returns the built-in scenario names, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
