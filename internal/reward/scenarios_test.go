package reward

import (
	"os"
	"path/filepath"
	"testing"
)

func TestForScenario_efficiencyTraining(t *testing.T) {
	t.Parallel()
	w, ok := ForScenario(ScenarioEfficiency)
	if !ok {
		t.Fatal("efficiency-training should be a known scenario")
	}
	if w.TaskCompletionReward != 15.0 {
		t.Fatalf("task_completion_reward = %v, want 15.0", w.TaskCompletionReward)
	}
	if w.InvalidActionPenalty != -2.0 {
		t.Fatalf("invalid_action_penalty = %v, want -2.0", w.InvalidActionPenalty)
	}
}

func TestForScenario_unknownFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	w, ok := ForScenario("unknown-name")
	if ok {
		t.Fatal("unknown scenario reported as known")
	}
	if w != DefaultWeights() {
		t.Fatalf("fallback weights = %+v, want defaults", w)
	}
}

func TestForScenario_presetsAreValues(t *testing.T) {
	t.Parallel()
	a, _ := ForScenario(ScenarioCollaboration)
	a.CommentCreationReward = 999
	b, _ := ForScenario(ScenarioCollaboration)
	if b.CommentCreationReward == 999 {
		t.Fatal("mutating a returned preset leaked into the registry")
	}
}

func TestScenarioNames(t *testing.T) {
	t.Parallel()
	names := ScenarioNames()
	if len(names) != 3 {
		t.Fatalf("scenario count = %d, want 3", len(names))
	}
	want := []string{ScenarioCollaboration, ScenarioEfficiency, ScenarioProjectCreation}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestScenarios_allValidate(t *testing.T) {
	t.Parallel()
	for _, name := range ScenarioNames() {
		w, _ := ForScenario(name)
		if err := w.Validate(); err != nil {
			t.Fatalf("scenario %q does not validate: %v", name, err)
		}
	}
}

func TestWeights_validateRejectsBadRanges(t *testing.T) {
	t.Parallel()
	w := DefaultWeights()
	w.InvalidActionPenalty = 1.0
	if err := w.Validate(); err == nil {
		t.Fatal("positive invalid_action_penalty should not validate")
	}
	w = DefaultWeights()
	w.DeadlineBonusMultiplier = -0.5
	if err := w.Validate(); err == nil {
		t.Fatal("negative deadline_bonus_multiplier should not validate")
	}
}

func TestLoadWeightsFile_overridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"task_completion_reward": 42.0, "timeout_penalty": -3.0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := LoadWeightsFile(path)
	if err != nil {
		t.Fatalf("LoadWeightsFile: %v", err)
	}
	if w.TaskCompletionReward != 42.0 || w.TimeoutPenalty != -3.0 {
		t.Fatalf("overrides not applied: %+v", w)
	}
	// Untouched fields keep defaults.
	if w.TaskCreationReward != DefaultWeights().TaskCreationReward {
		t.Fatalf("task_creation_reward = %v, want default", w.TaskCreationReward)
	}
}

func TestLoadWeightsFile_invalidValuesAreFatal(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, []byte(`{"navigation_penalty": 0.5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWeightsFile(path); err == nil {
		t.Fatal("out-of-range weight file should fail to load")
	}
	if _, err := LoadWeightsFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing file should fail to load")
	}
}
