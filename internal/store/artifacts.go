// Package store persists training artifacts. Each sealed episode is written
// as an indented JSON file in the log directory, the cross-episode summary
// lives alongside them, and a SQLite index keeps the sealed episodes
// queryable for status commands.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

const summaryFilename = "training_summary.json"

// EpisodeFilename returns the artifact name for an episode number, zero
// padded so lexical and numeric order agree.
func EpisodeFilename(episode int) string {
	return fmt.Sprintf("episode_%06d.json", episode)
}

// Archive writes episode and summary artifacts under a log directory and
// mirrors sealed episodes into the SQLite index when one is attached. It
// implements the episode tracker's persistence interface.
type Archive struct {
	dir   string
	index *Index
}

// NewArchive ensures dir exists and returns an archive rooted there. A nil
// index disables indexing; JSON artifacts are still written.
func NewArchive(dir string, index *Index) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("log directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Archive{dir: dir, index: index}, nil
}

// Dir returns the archive's root directory.
func (a *Archive) Dir() string {
	return a.dir
}

// SaveEpisode writes the sealed episode artifact and indexes it.
func (a *Archive) SaveEpisode(rec *models.EpisodeRecord) error {
	path := filepath.Join(a.dir, EpisodeFilename(rec.EpisodeNumber))
	if err := writeJSON(path, rec); err != nil {
		return fmt.Errorf("write episode %d: %w", rec.EpisodeNumber, err)
	}
	if a.index != nil {
		if err := a.index.IndexEpisode(context.Background(), rec, path); err != nil {
			return err
		}
	}
	return nil
}

// SaveSummary writes the training summary artifact.
func (a *Archive) SaveSummary(sum *models.TrainingSummary) error {
	if err := writeJSON(filepath.Join(a.dir, summaryFilename), sum); err != nil {
		return fmt.Errorf("write training summary: %w", err)
	}
	return nil
}

// LoadSummary reads the training summary from a prior run. Returns (nil, nil)
// when none exists.
func (a *Archive) LoadSummary() (*models.TrainingSummary, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, summaryFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read training summary: %w", err)
	}
	var sum models.TrainingSummary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("parse training summary: %w", err)
	}
	return &sum, nil
}

// LoadEpisode reads one sealed episode artifact back.
func (a *Archive) LoadEpisode(episode int) (*models.EpisodeRecord, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, EpisodeFilename(episode)))
	if err != nil {
		return nil, fmt.Errorf("read episode %d: %w", episode, err)
	}
	var rec models.EpisodeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse episode %d: %w", episode, err)
	}
	return &rec, nil
}

// writeJSON writes v as indented JSON through a temp file and rename so a
// crash mid-write never leaves a truncated artifact.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
