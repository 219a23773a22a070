// Package episode tracks training progress across episodes: per-step logs,
// sealed episode records, the bounded cross-episode history, and the derived
// summary and trend views. Persistence goes through a Sink so the tracker is
// testable without touching disk.
package episode

import (
	"log/slog"
	"math"
	"time"

	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
	"github.com/marvelxcodes/asana-rl-gym/internal/reward"
	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

const (
	// maxHistory bounds the per-metric histories kept across episodes.
	maxHistory = 100
	// recentWindow is the trailing window for "recent" averages.
	recentWindow = 10
	// trendWindow is the trailing window trends are fit over.
	trendWindow = 20
	// minTrendPoints is the minimum window size before a trend is reported.
	minTrendPoints = 5
)

// Reason records how an episode ended.
type Reason string

const (
	ReasonTerminated Reason = "terminated"
	ReasonTruncated  Reason = "truncated"
)

// Sink persists sealed episode records and the training summary. A nil
// summary from LoadSummary with a nil error means no prior run exists.
type Sink interface {
	SaveEpisode(rec *models.EpisodeRecord) error
	SaveSummary(sum *models.TrainingSummary) error
	LoadSummary() (*models.TrainingSummary, error)
}

// TrainingHistory is the bounded cross-episode state. Best and Worst start
// at -Inf/+Inf so the first episode always updates both; the infinities are
// sanitized to zero when serialized before any episode has completed.
type TrainingHistory struct {
	TotalEpisodes int
	TotalSteps    int
	TotalReward   float64
	Best          float64
	Worst         float64
	Rewards       []float64
	Lengths       []int
	SuccessRates  []float64
}

// NewTrainingHistory returns an empty history with extrema primed.
func NewTrainingHistory() *TrainingHistory {
	return &TrainingHistory{
		Best:  math.Inf(-1),
		Worst: math.Inf(1),
	}
}

func pushBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > maxHistory {
		s = s[1:]
	}
	return s
}

// Tracker accumulates step records for the in-flight episode and folds each
// sealed episode into the training history. Not safe for concurrent use; one
// tracker drives one training loop.
type Tracker struct {
	sink    Sink
	runID   string
	logger  *slog.Logger
	now     func() time.Time
	history *TrainingHistory

	currentEpisode int
	episodeStart   time.Time
	steps          []models.StepRecord
	active         bool
}

// NewTracker returns a tracker persisting through sink. A nil sink disables
// persistence, which is what tests and dry runs want.
func NewTracker(sink Sink, runID string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		sink:    sink,
		runID:   runID,
		logger:  logger,
		now:     time.Now,
		history: NewTrainingHistory(),
	}
}

// CurrentEpisode returns the number of the episode in flight, or of the last
// completed episode when none is active.
func (t *Tracker) CurrentEpisode() int {
	return t.currentEpisode
}

// History exposes the cross-episode state, primarily for inspection in tests
// and status commands.
func (t *Tracker) History() *TrainingHistory {
	return t.history
}

// StartEpisode opens a new episode. A non-positive number auto-increments
// from the last episode; an explicit positive number pins the counter, which
// callers use when resuming a prior run.
func (t *Tracker) StartEpisode(number int) int {
	if number > 0 {
		t.currentEpisode = number
	} else {
		t.currentEpisode++
	}
	t.episodeStart = t.now()
	t.steps = t.steps[:0]
	t.active = true
	return t.currentEpisode
}

// LogStep appends one step to the in-flight episode. The observation is
// reduced to its bounded summary so episode artifacts stay small regardless
// of observation mode.
func (t *Tracker) LogStep(step int, actionID int, actionName string, rew float64, obs observe.Observation, info map[string]any) {
	if !t.active {
		t.logger.Warn("step logged outside an episode", "step", step, "action", actionName)
		return
	}
	t.steps = append(t.steps, models.StepRecord{
		Step:        step,
		Action:      actionID,
		ActionName:  actionName,
		Reward:      rew,
		Timestamp:   t.now(),
		Observation: observe.Summarize(obs),
		Info:        info,
	})
}

// EndEpisode seals the in-flight episode. finalReward is the caller's
// accumulated step reward for the episode; when an engine is supplied its
// end-of-episode bonus is added on top and its counters are attached to the
// record. The sealed record and the updated training summary are persisted;
// persistence failures are logged and do not abort training.
func (t *Tracker) EndEpisode(finalReward float64, episodeLength int, reason Reason, eng *reward.Engine) models.EpisodeSummary {
	end := t.now()
	duration := end.Sub(t.episodeStart).Seconds()

	bonus := 0.0
	var stats *models.EpisodeStats
	if eng != nil {
		bonus = eng.EpisodeEndBonus()
		s := eng.EpisodeStats()
		stats = &models.EpisodeStats{
			EpisodeSeconds:   s.EpisodeSeconds,
			TotalActions:     s.TotalActions,
			InvalidActions:   s.InvalidActions,
			SuccessRate:      s.SuccessRate,
			TasksCompleted:   s.TasksCompleted,
			TasksCreated:     s.TasksCreated,
			ProjectsCreated:  s.ProjectsCreated,
			CommentsAdded:    s.CommentsAdded,
			ActionsPerMinute: s.ActionsPerMinute,
		}
	}
	total := finalReward + bonus

	avg := total / math.Max(1, float64(episodeLength))
	rec := &models.EpisodeRecord{
		RunID:             t.runID,
		EpisodeNumber:     t.currentEpisode,
		StartTime:         t.episodeStart,
		EndTime:           end,
		DurationSeconds:   duration,
		EpisodeLength:     episodeLength,
		TotalReward:       total,
		EpisodeBonus:      bonus,
		AverageReward:     avg,
		TerminationReason: string(reason),
		Steps:             append([]models.StepRecord(nil), t.steps...),
		RewardStats:       stats,
	}

	h := t.history
	h.TotalEpisodes++
	h.TotalSteps += episodeLength
	h.TotalReward += total
	if total > h.Best {
		h.Best = total
	}
	if total < h.Worst {
		h.Worst = total
	}
	h.Rewards = pushBounded(h.Rewards, total)
	h.Lengths = pushBounded(h.Lengths, episodeLength)
	if stats != nil {
		h.SuccessRates = pushBounded(h.SuccessRates, stats.SuccessRate)
	}

	t.active = false
	t.steps = t.steps[:0]

	if t.sink != nil {
		if err := t.sink.SaveEpisode(rec); err != nil {
			t.logger.Error("save episode record", "episode", rec.EpisodeNumber, "error", err)
		}
		if err := t.sink.SaveSummary(t.buildSummary()); err != nil {
			t.logger.Error("save training summary", "error", err)
		}
	}

	return t.episodeSummary(rec)
}

func (t *Tracker) episodeSummary(rec *models.EpisodeRecord) models.EpisodeSummary {
	h := t.history
	sum := models.EpisodeSummary{
		EpisodeNumber:          rec.EpisodeNumber,
		EpisodeReward:          rec.TotalReward,
		EpisodeLength:          rec.EpisodeLength,
		EpisodeDurationSeconds: rec.DurationSeconds,
		RecentAvgReward:        mean(tail(h.Rewards, recentWindow)),
		RecentAvgLength:        meanInts(tail(h.Lengths, recentWindow)),
		RecentAvgSuccessRate:   mean(tail(h.SuccessRates, recentWindow)),
		TotalEpisodes:          h.TotalEpisodes,
		TotalSteps:             h.TotalSteps,
		AverageReward:          h.TotalReward / float64(h.TotalEpisodes),
		BestEpisodeReward:      h.Best,
		WorstEpisodeReward:     h.Worst,
	}
	if w := tail(h.Rewards, trendWindow); len(w) >= minTrendPoints {
		sum.RewardTrend = Trend(w)
	}
	if w := tail(h.Lengths, trendWindow); len(w) >= minTrendPoints {
		sum.LengthTrend = Trend(floats(w))
	}
	return sum
}

// PerformanceMetrics aggregates the retained history. ok is false before any
// episode has completed, which callers must treat as "no data" rather than a
// run of zeros.
func (t *Tracker) PerformanceMetrics() (models.PerformanceMetrics, bool) {
	h := t.history
	if h.TotalEpisodes == 0 {
		return models.PerformanceMetrics{}, false
	}
	m := models.PerformanceMetrics{
		EpisodesCompleted:    h.TotalEpisodes,
		TotalSteps:           h.TotalSteps,
		AverageReward:        h.TotalReward / float64(h.TotalEpisodes),
		RecentAverageReward:  mean(tail(h.Rewards, recentWindow)),
		BestReward:           h.Best,
		WorstReward:          h.Worst,
		RewardStd:            stddev(h.Rewards),
		AverageEpisodeLength: meanInts(h.Lengths),
		AverageSuccessRate:   mean(h.SuccessRates),
	}
	if w := tail(h.Rewards, trendWindow); len(w) >= minTrendPoints {
		m.ImprovementTrend = Trend(w)
	}
	return m, true
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// buildSummary snapshots the history into its persisted form. Extrema that
// are still at their priming infinities serialize as zero so the artifact
// stays valid JSON.
func (t *Tracker) buildSummary() *models.TrainingSummary {
	h := t.history
	sum := &models.TrainingSummary{
		RunID:                t.runID,
		TotalEpisodes:        h.TotalEpisodes,
		TotalSteps:           h.TotalSteps,
		TotalReward:          h.TotalReward,
		BestEpisodeReward:    h.Best,
		WorstEpisodeReward:   h.Worst,
		RewardHistory:        append([]float64(nil), h.Rewards...),
		EpisodeLengthHistory: append([]int(nil), h.Lengths...),
		SuccessRateHistory:   append([]float64(nil), h.SuccessRates...),
		SavedAt:              t.now(),
	}
	if h.TotalEpisodes > 0 {
		sum.AverageReward = h.TotalReward / float64(h.TotalEpisodes)
	}
	if math.IsInf(sum.BestEpisodeReward, 0) {
		sum.BestEpisodeReward = 0
	}
	if math.IsInf(sum.WorstEpisodeReward, 0) {
		sum.WorstEpisodeReward = 0
	}
	return sum
}

// SaveTrainingSummary persists the current training summary. Called on
// shutdown so a run interrupted between episodes still leaves a consistent
// artifact behind.
func (t *Tracker) SaveTrainingSummary() error {
	if t.sink == nil {
		return nil
	}
	return t.sink.SaveSummary(t.buildSummary())
}

// LoadTrainingHistory restores cross-episode state from a prior run's
// summary, if one exists. Episode numbering continues after the restored
// count so resumed runs do not overwrite earlier episode artifacts. Returns
// false when no prior summary exists.
func (t *Tracker) LoadTrainingHistory() (bool, error) {
	if t.sink == nil {
		return false, nil
	}
	sum, err := t.sink.LoadSummary()
	if err != nil {
		return false, err
	}
	if sum == nil {
		return false, nil
	}
	h := NewTrainingHistory()
	h.TotalEpisodes = sum.TotalEpisodes
	h.TotalSteps = sum.TotalSteps
	h.TotalReward = sum.TotalReward
	h.Rewards = append([]float64(nil), sum.RewardHistory...)
	h.Lengths = append([]int(nil), sum.EpisodeLengthHistory...)
	h.SuccessRates = append([]float64(nil), sum.SuccessRateHistory...)
	if sum.TotalEpisodes > 0 {
		h.Best = sum.BestEpisodeReward
		h.Worst = sum.WorstEpisodeReward
	}
	t.history = h
	t.currentEpisode = sum.TotalEpisodes
	t.active = false
	t.steps = t.steps[:0]
	return true, nil
}
