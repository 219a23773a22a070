package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRootCmd_hasSubcommands(t *testing.T) {
	root := NewRootCmd("test")
	if root == nil {
		t.Fatal("NewRootCmd returned nil")
	}
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"train", "probe", "status", "episodes", "actions", "scenarios", "config"} {
		if !names[want] {
			t.Errorf("expected subcommand %q", want)
		}
	}
}

func TestNewRootCmd_versionFlag(t *testing.T) {
	root := NewRootCmd("1.2.3")
	if root.Version != "1.2.3" {
		t.Errorf("Version: got %q", root.Version)
	}
	if NewRootCmd("").Version != "dev" {
		t.Error("empty version should default to dev")
	}
}

func TestNewRootCmd_persistentFlags(t *testing.T) {
	root := NewRootCmd("")
	for _, name := range []string{"config", "log-dir", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s persistent flag", name)
		}
	}
}

func TestActions_listsCatalog(t *testing.T) {
	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"actions"})
	if err := root.Execute(); err != nil {
		t.Fatalf("actions: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"create_new_task", "add_comment", "search_tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("actions output missing %q", want)
		}
	}
	if got := strings.Count(out, "\n"); got != 51 { // header + 50 actions
		t.Errorf("actions output lines = %d, want 51", got)
	}
}

func TestActions_categoryFilter(t *testing.T) {
	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"actions", "--category", "collaboration"})
	if err := root.Execute(); err != nil {
		t.Fatalf("actions --category: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "create_new_project") {
		t.Error("filtered output should not list project actions")
	}
	if !strings.Contains(out, "add_comment") {
		t.Error("filtered output missing collaboration actions")
	}
}

func TestScenarios_listAndShow(t *testing.T) {
	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"scenarios"})
	if err := root.Execute(); err != nil {
		t.Fatalf("scenarios: %v", err)
	}
	if !strings.Contains(buf.String(), "efficiency-training") {
		t.Errorf("scenario list missing efficiency-training:\n%s", buf.String())
	}

	root = NewRootCmd("")
	buf.Reset()
	root.SetOut(&buf)
	root.SetArgs([]string{"scenarios", "--show", "efficiency-training"})
	if err := root.Execute(); err != nil {
		t.Fatalf("scenarios --show: %v", err)
	}
	if !strings.Contains(buf.String(), `"task_completion_reward": 15`) {
		t.Errorf("scenario weights not shown:\n%s", buf.String())
	}

	root = NewRootCmd("")
	root.SetArgs([]string{"scenarios", "--show", "nope"})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("unknown scenario should fail")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")

	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	// Re-running without --force refuses to clobber the file.
	root = NewRootCmd("")
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite")
	}

	root = NewRootCmd("")
	buf.Reset()
	root.SetOut(&buf)
	root.SetArgs([]string{"--config", path, "config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(buf.String(), "base_url: http://localhost:3000") {
		t.Errorf("config show output:\n%s", buf.String())
	}
}

func TestStatus_withoutSummary(t *testing.T) {
	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--log-dir", t.TempDir(), "status"})
	if err := root.Execute(); err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(buf.String(), "no training summary") {
		t.Errorf("status output:\n%s", buf.String())
	}
}

func TestTrain_stubRun(t *testing.T) {
	dir := t.TempDir()
	root := NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{
		"--log-dir", dir,
		"train", "--stub", "--episodes", "2", "--max-steps", "5", "--seed", "7",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("train --stub: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "episodes:       2") {
		t.Errorf("train summary output:\n%s", out)
	}
	for _, artifact := range []string{"episode_000001.json", "episode_000002.json", "training_summary.json", "episodes.sqlite"} {
		if _, err := os.Stat(filepath.Join(dir, artifact)); err != nil {
			t.Errorf("missing artifact %s: %v", artifact, err)
		}
	}
}

func TestTrain_resumeContinuesNumbering(t *testing.T) {
	dir := t.TempDir()
	run := func(extra ...string) {
		t.Helper()
		root := NewRootCmd("")
		root.SetOut(&bytes.Buffer{})
		args := append([]string{"--log-dir", dir, "train", "--stub", "--episodes", "2", "--max-steps", "3", "--seed", "11"}, extra...)
		root.SetArgs(args)
		if err := root.Execute(); err != nil {
			t.Fatalf("train: %v", err)
		}
	}
	run()
	run("--resume")
	for _, artifact := range []string{"episode_000003.json", "episode_000004.json"} {
		if _, err := os.Stat(filepath.Join(dir, artifact)); err != nil {
			t.Errorf("resumed run missing %s: %v", artifact, err)
		}
	}
}

func TestTrain_rejectsBadFlags(t *testing.T) {
	root := NewRootCmd("")
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"train", "--episodes", "0"})
	if err := root.Execute(); err == nil {
		t.Fatal("zero episodes should fail")
	}
}

func TestEpisodes_afterStubRun(t *testing.T) {
	dir := t.TempDir()
	root := NewRootCmd("")
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--log-dir", dir, "train", "--stub", "--episodes", "1", "--max-steps", "3", "--seed", "3"})
	if err := root.Execute(); err != nil {
		t.Fatalf("train: %v", err)
	}

	root = NewRootCmd("")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--log-dir", dir, "episodes"})
	if err := root.Execute(); err != nil {
		t.Fatalf("episodes: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "EPISODE") || !strings.Contains(out, "1 episodes indexed") {
		t.Errorf("episodes output:\n%s", out)
	}
}
