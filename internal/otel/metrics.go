package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce       sync.Once
	stepsCounter          metric.Int64Counter
	invalidActionsCounter metric.Int64Counter
	episodesCounter       metric.Int64Counter
	stepDuration          metric.Float64Histogram
	stepReward            metric.Float64Histogram
	episodeReward         metric.Float64Histogram
	episodeLength         metric.Int64Histogram
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		stepsCounter, err = m.Int64Counter("asanagym_steps_total", metric.WithDescription("Total environment steps taken"))
		if err != nil {
			return
		}
		invalidActionsCounter, err = m.Int64Counter("asanagym_invalid_actions_total", metric.WithDescription("Total rejected or out-of-range actions"))
		if err != nil {
			return
		}
		episodesCounter, err = m.Int64Counter("asanagym_episodes_total", metric.WithDescription("Total completed episodes by end reason"))
		if err != nil {
			return
		}
		stepDuration, err = m.Float64Histogram("asanagym_step_duration_seconds", metric.WithDescription("Wall-clock duration of one environment step"))
		if err != nil {
			return
		}
		stepReward, err = m.Float64Histogram("asanagym_step_reward", metric.WithDescription("Shaped reward per step"))
		if err != nil {
			return
		}
		episodeReward, err = m.Float64Histogram("asanagym_episode_reward", metric.WithDescription("Total reward per episode including the end bonus"))
		if err != nil {
			return
		}
		episodeLength, err = m.Int64Histogram("asanagym_episode_length_steps", metric.WithDescription("Steps per episode"))
	})
	return err
}

// RecordStep records one environment step with its action, latency, and
// shaped reward.
func RecordStep(ctx context.Context, actionName, category string, d time.Duration, reward float64, success bool) {
	attrs := metric.WithAttributes(AttrAction.String(actionName), AttrCategory.String(category))
	if stepsCounter != nil {
		stepsCounter.Add(ctx, 1, attrs)
	}
	if stepDuration != nil {
		stepDuration.Record(ctx, d.Seconds(), attrs)
	}
	if stepReward != nil {
		stepReward.Record(ctx, reward, attrs)
	}
	if !success && invalidActionsCounter != nil {
		invalidActionsCounter.Add(ctx, 1, attrs)
	}
}

// RecordEpisode records one completed episode.
func RecordEpisode(ctx context.Context, scenario, reason string, totalReward float64, length int) {
	attrs := metric.WithAttributes(AttrScenario.String(scenario), AttrReason.String(reason))
	if episodesCounter != nil {
		episodesCounter.Add(ctx, 1, attrs)
	}
	if episodeReward != nil {
		episodeReward.Record(ctx, totalReward, attrs)
	}
	if episodeLength != nil {
		episodeLength.Record(ctx, int64(length), attrs)
	}
}
