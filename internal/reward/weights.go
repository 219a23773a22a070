// Package reward implements the shaped reward signal: weight presets per
// training scenario and the stateful per-episode engine that scores each
// action against observed state deltas.
package reward

import (
	"encoding/json"
	"fmt"
	"os"
)

// Weights is the set of scalar coefficients driving reward calculation.
// Immutable once constructed; presets are values, so switching scenario never
// mutates a shared instance.
type Weights struct {
	// Task rewards.
	TaskCompletionReward float64 `json:"task_completion_reward"`
	TaskCreationReward   float64 `json:"task_creation_reward"`
	TaskAssignmentReward float64 `json:"task_assignment_reward"`

	// Project management rewards.
	ProjectCreationReward     float64 `json:"project_creation_reward"`
	ProjectOrganizationReward float64 `json:"project_organization_reward"`

	// Efficiency rewards.
	QuickActionBonus             float64 `json:"quick_action_bonus"`
	WorkflowEfficiencyMultiplier float64 `json:"workflow_efficiency_multiplier"`

	// Penalties (non-positive).
	InvalidActionPenalty float64 `json:"invalid_action_penalty"`
	TimeoutPenalty       float64 `json:"timeout_penalty"`
	NavigationPenalty    float64 `json:"navigation_penalty"`

	// Collaboration rewards.
	CommentCreationReward float64 `json:"comment_creation_reward"`
	TeamInteractionBonus  float64 `json:"team_interaction_bonus"`

	// Time-based modifiers.
	DeadlineBonusMultiplier  float64 `json:"deadline_bonus_multiplier"`
	OverduePenaltyMultiplier float64 `json:"overdue_penalty_multiplier"`
}

// DefaultWeights returns the baseline weight set used when no scenario or
// weight file is supplied.
func DefaultWeights() Weights {
	return Weights{
		TaskCompletionReward:         10.0,
		TaskCreationReward:           2.0,
		TaskAssignmentReward:         1.0,
		ProjectCreationReward:        5.0,
		ProjectOrganizationReward:    3.0,
		QuickActionBonus:             0.5,
		WorkflowEfficiencyMultiplier: 1.2,
		InvalidActionPenalty:         -1.0,
		TimeoutPenalty:               -5.0,
		NavigationPenalty:            -0.1,
		CommentCreationReward:        1.5,
		TeamInteractionBonus:         2.0,
		DeadlineBonusMultiplier:      1.5,
		OverduePenaltyMultiplier:     0.5,
	}
}

// Validate checks the weight ranges. Penalties must be non-positive and
// multipliers non-negative; a violation indicates a misconfigured run and is
// fatal at construction time.
func (w Weights) Validate() error {
	if w.InvalidActionPenalty > 0 {
		return fmt.Errorf("invalid_action_penalty must be <= 0, got %v", w.InvalidActionPenalty)
	}
	if w.TimeoutPenalty > 0 {
		return fmt.Errorf("timeout_penalty must be <= 0, got %v", w.TimeoutPenalty)
	}
	if w.NavigationPenalty > 0 {
		return fmt.Errorf("navigation_penalty must be <= 0, got %v", w.NavigationPenalty)
	}
	if w.DeadlineBonusMultiplier < 0 {
		return fmt.Errorf("deadline_bonus_multiplier must be >= 0, got %v", w.DeadlineBonusMultiplier)
	}
	if w.WorkflowEfficiencyMultiplier < 0 {
		return fmt.Errorf("workflow_efficiency_multiplier must be >= 0, got %v", w.WorkflowEfficiencyMultiplier)
	}
	if w.OverduePenaltyMultiplier < 0 {
		return fmt.Errorf("overdue_penalty_multiplier must be >= 0, got %v", w.OverduePenaltyMultiplier)
	}
	return nil
}

// LoadWeightsFile reads a JSON weight file. Fields not present keep their
// default values. The result is validated before use.
func LoadWeightsFile(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}
	w := DefaultWeights()
	if err := json.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	if err := w.Validate(); err != nil {
		return Weights{}, fmt.Errorf("weights file %s: %w", path, err)
	}
	return w, nil
}
