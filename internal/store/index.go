package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Index is the SQLite index over sealed episodes. The JSON artifacts remain
// the source of truth; the index exists so status commands can query runs
// without scanning the log directory.
type Index struct {
	DB *sql.DB
}

// OpenIndex opens (or creates) the episode index at dir/episodes.sqlite and
// runs migrations.
func OpenIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "episodes.sqlite")
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	idx := &Index{DB: db}
	if err := idx.initPragmas(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := idx.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) Close() error {
	if i == nil || i.DB == nil {
		return nil
	}
	return i.DB.Close()
}

func (i *Index) initPragmas(ctx context.Context) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, q := range stmts {
		if _, err := i.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// EpisodeRow is one indexed episode.
type EpisodeRow struct {
	RunID             string
	EpisodeNumber     int
	StartTime         time.Time
	EndTime           time.Time
	DurationSeconds   float64
	EpisodeLength     int
	TotalReward       float64
	EpisodeBonus      float64
	TerminationReason string
	ArtifactPath      string
}

// IndexEpisode upserts one sealed episode. Re-running an episode number in
// the same run replaces the earlier row, matching the JSON artifact being
// overwritten on disk.
func (i *Index) IndexEpisode(ctx context.Context, rec *models.EpisodeRecord, artifactPath string) error {
	_, err := i.DB.ExecContext(ctx, `
INSERT INTO episodes(run_id, episode_number, start_time, end_time, duration_seconds,
                     episode_length, total_reward, episode_bonus, termination_reason,
                     artifact_path, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, episode_number) DO UPDATE SET
  start_time=excluded.start_time,
  end_time=excluded.end_time,
  duration_seconds=excluded.duration_seconds,
  episode_length=excluded.episode_length,
  total_reward=excluded.total_reward,
  episode_bonus=excluded.episode_bonus,
  termination_reason=excluded.termination_reason,
  artifact_path=excluded.artifact_path,
  created_at=excluded.created_at`,
		rec.RunID, rec.EpisodeNumber, rec.StartTime.Unix(), rec.EndTime.Unix(),
		rec.DurationSeconds, rec.EpisodeLength, rec.TotalReward, rec.EpisodeBonus,
		rec.TerminationReason, artifactPath, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("index episode %d: %w", rec.EpisodeNumber, err)
	}
	return nil
}

// RecentEpisodes returns the most recently indexed episodes, newest first.
func (i *Index) RecentEpisodes(ctx context.Context, limit int) ([]EpisodeRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := i.DB.QueryContext(ctx, `
SELECT run_id, episode_number, start_time, end_time, duration_seconds,
       episode_length, total_reward, episode_bonus, termination_reason, artifact_path
FROM episodes
ORDER BY created_at DESC, episode_number DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []EpisodeRow
	for rows.Next() {
		var r EpisodeRow
		var start, end int64
		if err := rows.Scan(&r.RunID, &r.EpisodeNumber, &start, &end, &r.DurationSeconds,
			&r.EpisodeLength, &r.TotalReward, &r.EpisodeBonus, &r.TerminationReason, &r.ArtifactPath); err != nil {
			return nil, err
		}
		r.StartTime = time.Unix(start, 0).UTC()
		r.EndTime = time.Unix(end, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Totals summarizes the indexed episodes.
type Totals struct {
	Episodes    int
	Steps       int
	TotalReward float64
	BestReward  float64
	WorstReward float64
}

// RunTotals aggregates over one run, or over all runs when runID is empty.
func (i *Index) RunTotals(ctx context.Context, runID string) (Totals, error) {
	q := `
SELECT COUNT(*), COALESCE(SUM(episode_length),0), COALESCE(SUM(total_reward),0),
       COALESCE(MAX(total_reward),0), COALESCE(MIN(total_reward),0)
FROM episodes`
	args := []any{}
	if runID != "" {
		q += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	var t Totals
	err := i.DB.QueryRowContext(ctx, q, args...).
		Scan(&t.Episodes, &t.Steps, &t.TotalReward, &t.BestReward, &t.WorstReward)
	return t, err
}

func (i *Index) Migrate(ctx context.Context) error {
	if i == nil || i.DB == nil {
		return errors.New("index not initialized")
	}
	if _, err := i.DB.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at INTEGER NOT NULL
);`); err != nil {
		return err
	}
	applied, err := i.appliedVersions(ctx)
	if err != nil {
		return err
	}
	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}
	var migs []migration
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		v, err := parseMigrationVersion(name)
		if err != nil {
			return err
		}
		body, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return err
		}
		migs = append(migs, migration{Version: v, Name: name, SQL: string(body)})
	}
	sort.Slice(migs, func(a, b int) bool { return migs[a].Version < migs[b].Version })
	for _, m := range migs {
		if applied[m.Version] {
			continue
		}
		if err := i.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
	}
	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

func (i *Index) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := i.DB.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func (i *Index) applyMigration(ctx context.Context, m migration) error {
	tx, err := i.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)`, m.Version, time.Now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

func parseMigrationVersion(filename string) (int, error) {
	base := strings.TrimSuffix(filename, ".sql")
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 1 {
		return 0, fmt.Errorf("invalid migration filename: %s", filename)
	}
	v, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid migration version in %s", filename)
	}
	return v, nil
}
