// Package models provides the JSON artifact types written by the training
// harness: per-episode records, the cross-run training summary, and the
// derived metric views. These types mirror the on-disk JSON and are stable
// for external analysis tools.
package models

import "time"

// ObservationSummary is the bounded description of an observation kept in
// step records. Visual buffers are reduced to shape metadata; structured
// state is retained in full.
type ObservationSummary struct {
	Type         string    `json:"type"` // structured | visual | hybrid
	VisualShape  []int     `json:"visual_shape,omitempty"`
	TaskCounts   *[3]int   `json:"task_counts,omitempty"`
	ProjectCount *int      `json:"project_count,omitempty"`
	CurrentView  string    `json:"current_view,omitempty"`
	PageElements []float32 `json:"page_elements,omitempty"`
}

// StepRecord is one step inside an episode record.
type StepRecord struct {
	Step        int                `json:"step"`
	Action      int                `json:"action"`
	ActionName  string             `json:"action_name"`
	Reward      float64            `json:"reward"`
	Timestamp   time.Time          `json:"timestamp"`
	Observation ObservationSummary `json:"observation"`
	Info        map[string]any     `json:"info,omitempty"`
}

// EpisodeStats is the reward engine's end-of-episode counter snapshot.
type EpisodeStats struct {
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

// EpisodeRecord is the sealed, immutable record of one completed episode,
// written as episode_NNNNNN.json in the log directory.
type EpisodeRecord struct {
	RunID             string        `json:"run_id,omitempty"`
	EpisodeNumber     int           `json:"episode_number"`
	StartTime         time.Time     `json:"start_time"`
	EndTime           time.Time     `json:"end_time"`
	DurationSeconds   float64       `json:"duration"`
	EpisodeLength     int           `json:"episode_length"`
	TotalReward       float64       `json:"total_reward"`
	EpisodeBonus      float64       `json:"episode_bonus"`
	AverageReward     float64       `json:"average_reward"`
	TerminationReason string        `json:"termination_reason"` // terminated | truncated
	Steps             []StepRecord  `json:"actions"`
	RewardStats       *EpisodeStats `json:"reward_breakdown,omitempty"`
}

// TrainingSummary is the cross-episode state persisted as
// training_summary.json. The three histories are bounded (most recent 100
// episodes) and stored verbatim to support reload.
type TrainingSummary struct {
	RunID                string    `json:"run_id,omitempty"`
	TotalEpisodes        int       `json:"total_episodes"`
	TotalSteps           int       `json:"total_steps"`
	TotalReward          float64   `json:"total_reward"`
	AverageReward        float64   `json:"average_reward"`
	BestEpisodeReward    float64   `json:"best_episode_reward"`
	WorstEpisodeReward   float64   `json:"worst_episode_reward"`
	RewardHistory        []float64 `json:"reward_history"`
	EpisodeLengthHistory []int     `json:"episode_length_history"`
	SuccessRateHistory   []float64 `json:"success_rate_history"`
	SavedAt              time.Time `json:"timestamp"`
}

// EpisodeSummary is returned to the caller after each episode: current
// episode metrics plus trailing averages and trend estimates.
type EpisodeSummary struct {
	EpisodeNumber          int     `json:"episode_number"`
	EpisodeReward          float64 `json:"episode_reward"`
	EpisodeLength          int     `json:"episode_length"`
	EpisodeDurationSeconds float64 `json:"episode_duration"`

	// Trailing-10-episode averages.
	RecentAvgReward      float64 `json:"recent_avg_reward"`
	RecentAvgLength      float64 `json:"recent_avg_length"`
	RecentAvgSuccessRate float64 `json:"recent_avg_success_rate"`

	// Overall statistics.
	TotalEpisodes      int     `json:"total_episodes"`
	TotalSteps         int     `json:"total_steps"`
	AverageReward      float64 `json:"average_reward"`
	BestEpisodeReward  float64 `json:"best_episode_reward"`
	WorstEpisodeReward float64 `json:"worst_episode_reward"`

	// Least-squares slopes over the trailing 20 episodes.
	RewardTrend float64 `json:"reward_trend"`
	LengthTrend float64 `json:"length_trend"`
}

// PerformanceMetrics is the aggregate view over the full retained history.
type PerformanceMetrics struct {
	EpisodesCompleted    int     `json:"episodes_completed"`
	TotalSteps           int     `json:"total_steps"`
	AverageReward        float64 `json:"average_reward"`
	RecentAverageReward  float64 `json:"recent_average_reward"`
	BestReward           float64 `json:"best_reward"`
	WorstReward          float64 `json:"worst_reward"`
	RewardStd            float64 `json:"reward_std"`
	AverageEpisodeLength float64 `json:"average_episode_length"`
	AverageSuccessRate   float64 `json:"average_success_rate"`
	ImprovementTrend     float64 `json:"improvement_trend"`
}
