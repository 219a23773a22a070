package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

func testRecord(run string, n int, reward float64) *models.EpisodeRecord {
	start := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	return &models.EpisodeRecord{
		RunID:             run,
		EpisodeNumber:     n,
		StartTime:         start,
		EndTime:           start.Add(90 * time.Second),
		DurationSeconds:   90,
		EpisodeLength:     12,
		TotalReward:       reward,
		EpisodeBonus:      1.5,
		AverageReward:     reward / 12,
		TerminationReason: "truncated",
		Steps: []models.StepRecord{
			{Step: 0, Action: 20, ActionName: "create_new_task", Reward: 2.5, Timestamp: start},
		},
	}
}

func TestEpisodeFilename(t *testing.T) {
	t.Parallel()
	if got := EpisodeFilename(7); got != "episode_000007.json" {
		t.Fatalf("EpisodeFilename(7) = %q", got)
	}
	if got := EpisodeFilename(123456); got != "episode_123456.json" {
		t.Fatalf("EpisodeFilename(123456) = %q", got)
	}
}

func TestArchive_episodeRoundTrip(t *testing.T) {
	t.Parallel()
	a, err := NewArchive(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	rec := testRecord("run-1", 3, 42.5)
	if err := a.SaveEpisode(rec); err != nil {
		t.Fatalf("SaveEpisode: %v", err)
	}
	if _, err := os.Stat(filepath.Join(a.Dir(), "episode_000003.json")); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	got, err := a.LoadEpisode(3)
	if err != nil {
		t.Fatalf("LoadEpisode: %v", err)
	}
	if got.TotalReward != 42.5 || got.EpisodeNumber != 3 || len(got.Steps) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Steps[0].ActionName != "create_new_task" {
		t.Fatalf("step action = %q", got.Steps[0].ActionName)
	}
}

func TestArchive_summaryRoundTrip(t *testing.T) {
	t.Parallel()
	a, err := NewArchive(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if sum, err := a.LoadSummary(); err != nil || sum != nil {
		t.Fatalf("LoadSummary before save = %v, %v; want nil, nil", sum, err)
	}
	want := &models.TrainingSummary{
		TotalEpisodes:      4,
		TotalSteps:         48,
		TotalReward:        100,
		AverageReward:      25,
		BestEpisodeReward:  40,
		WorstEpisodeReward: 10,
		RewardHistory:      []float64{10, 20, 30, 40},
		SavedAt:            time.Date(2025, 4, 2, 11, 0, 0, 0, time.UTC),
	}
	if err := a.SaveSummary(want); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	got, err := a.LoadSummary()
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if got.TotalEpisodes != 4 || got.BestEpisodeReward != 40 || len(got.RewardHistory) != 4 {
		t.Fatalf("summary mismatch: %+v", got)
	}
}

func TestIndex_upsertAndQuery(t *testing.T) {
	t.Parallel()
	idx, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		rec := testRecord("run-1", n, float64(n)*10)
		if err := idx.IndexEpisode(ctx, rec, "/tmp/"+EpisodeFilename(n)); err != nil {
			t.Fatalf("IndexEpisode(%d): %v", n, err)
		}
	}
	// Replaying an episode number replaces the row instead of duplicating it.
	rec := testRecord("run-1", 2, 99)
	if err := idx.IndexEpisode(ctx, rec, "/tmp/"+EpisodeFilename(2)); err != nil {
		t.Fatalf("re-index: %v", err)
	}

	rows, err := idx.RecentEpisodes(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEpisodes: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	totals, err := idx.RunTotals(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunTotals: %v", err)
	}
	if totals.Episodes != 3 || totals.Steps != 36 {
		t.Fatalf("totals = %+v", totals)
	}
	if totals.TotalReward != 10+99+30 || totals.BestReward != 99 || totals.WorstReward != 10 {
		t.Fatalf("reward totals = %+v", totals)
	}
	if empty, err := idx.RunTotals(ctx, "run-missing"); err != nil || empty.Episodes != 0 {
		t.Fatalf("missing run totals = %+v, %v", empty, err)
	}
}

func TestIndex_migrateIsIdempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	idx, err := OpenIndex(dir)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Reopening runs migrations against the existing schema.
	idx, err = OpenIndex(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = idx.Close() }()
	if err := idx.Migrate(context.Background()); err != nil {
		t.Fatalf("repeat migrate: %v", err)
	}
}

func TestArchive_indexedSave(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	idx, err := OpenIndex(dir)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	a, err := NewArchive(dir, idx)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if err := a.SaveEpisode(testRecord("run-2", 1, 5)); err != nil {
		t.Fatalf("SaveEpisode: %v", err)
	}
	rows, err := idx.RecentEpisodes(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentEpisodes: %v", err)
	}
	if len(rows) != 1 || rows[0].RunID != "run-2" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].ArtifactPath != filepath.Join(dir, "episode_000001.json") {
		t.Fatalf("artifact path = %q", rows[0].ArtifactPath)
	}
}
