// Package env is the environment facade: the gym-style Reset/Step surface
// that ties the driver, reward engine, and episode tracker together. The
// training loop talks only to this package.
package env

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/config"
	"github.com/marvelxcodes/asana-rl-gym/internal/driver"
	"github.com/marvelxcodes/asana-rl-gym/internal/episode"
	"github.com/marvelxcodes/asana-rl-gym/internal/observe"
	"github.com/marvelxcodes/asana-rl-gym/internal/reward"
	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

// perStepTimeBudget bounds wall-clock episode length: an episode is truncated
// once it has run longer than MaxEpisodeSteps times this budget, so a stalled
// browser cannot pin the training loop forever.
const perStepTimeBudget = 10 * time.Second

// Environment drives one session of the target application. Not safe for
// concurrent use; one environment serves one training loop.
type Environment struct {
	cfg     *config.Config
	drv     driver.Driver
	engine  *reward.Engine
	tracker *episode.Tracker
	logger  *slog.Logger
	now     func() time.Time

	mode          observe.Mode
	origin        string
	stepCount     int
	episodeReward float64
	episodeStart  time.Time
	inEpisode     bool
	lastObs       observe.Observation
}

// New assembles an environment. The tracker may be nil, which disables
// episode logging (used by probe runs).
func New(cfg *config.Config, drv driver.Driver, eng *reward.Engine, tracker *episode.Tracker, logger *slog.Logger) *Environment {
	if logger == nil {
		logger = slog.Default()
	}
	return &Environment{
		cfg:     cfg,
		drv:     drv,
		engine:  eng,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
		mode:    cfg.Mode(),
	}
}

// ActionSpace returns the size of the discrete action space.
func (e *Environment) ActionSpace() int {
	return action.Count
}

// Reset starts a new episode: authenticates and navigates the session,
// clears per-episode reward state, and returns the initial observation.
// Reset failures are returned as errors; a session that cannot even start is
// not something the loop can train through.
func (e *Environment) Reset(ctx context.Context) (observe.Observation, map[string]any, error) {
	if e.cfg.Username != "" {
		if err := e.drv.Login(ctx); err != nil {
			return observe.Observation{}, nil, fmt.Errorf("login: %w", err)
		}
	}
	if err := e.drv.Navigate(ctx, "/"); err != nil {
		return observe.Observation{}, nil, fmt.Errorf("navigate to root: %w", err)
	}

	u, err := e.drv.CurrentURL(ctx)
	if err != nil {
		return observe.Observation{}, nil, fmt.Errorf("current url: %w", err)
	}
	e.origin = originOf(u)

	obs, err := e.drv.Observe(ctx, e.mode)
	if err != nil {
		return observe.Observation{}, nil, fmt.Errorf("initial observation: %w", err)
	}

	e.engine.Reset()
	e.stepCount = 0
	e.episodeReward = 0
	e.episodeStart = e.now()
	e.inEpisode = true
	e.lastObs = obs

	var num int
	if e.tracker != nil {
		num = e.tracker.StartEpisode(0)
	}
	e.logger.Info("episode started", "episode", num, "mode", string(e.mode))
	return obs, map[string]any{"episode": num}, nil
}

// StepResult is the outcome of one environment step.
type StepResult struct {
	Observation observe.Observation
	Reward      float64
	Breakdown   reward.Breakdown
	Terminated  bool
	Truncated   bool
	Info        map[string]any
}

// Step executes one action. Out-of-range actions are not errors: they score
// the invalid-action penalty against the unchanged observation so the policy
// learns the boundary. Driver failures fold into a terminal step with a zero
// observation instead of propagating, so a crashed browser ends the episode
// rather than the run.
func (e *Environment) Step(ctx context.Context, id action.ID) (StepResult, error) {
	if !e.inEpisode {
		return StepResult{}, fmt.Errorf("step before reset")
	}

	info := map[string]any{"action": int(id)}
	spec, valid := action.Lookup(id)
	if !valid {
		info["action_name"] = "invalid_action"
		info["success"] = false
		rew, bd := e.engine.Score("invalid_action", false, e.lastObs.State(), 0)
		e.stepCount++
		e.episodeReward += rew
		e.logStep(id, "invalid_action", rew, e.lastObs, info)
		return e.finishStep(StepResult{
			Observation: e.lastObs,
			Reward:      rew,
			Breakdown:   bd,
			Info:        info,
		}), nil
	}
	info["action_name"] = spec.Name

	started := e.now()
	success, execErr := e.drv.ExecuteAction(ctx, spec)

	var obs observe.Observation
	var obsErr error
	if execErr == nil {
		obs, obsErr = e.drv.Observe(ctx, e.mode)
	}
	if execErr != nil || obsErr != nil {
		err := execErr
		if err == nil {
			err = obsErr
		}
		e.logger.Error("driver failure", "action", spec.Name, "error", err)
		obs = observe.Zero(e.mode, e.cfg.ScreenshotWidth, e.cfg.ScreenshotHeight)
		info["error"] = err.Error()
		info["success"] = false
		rew, bd := e.engine.Score(spec.Name, false, obs.State(), e.now().Sub(started).Seconds())
		e.stepCount++
		e.episodeReward += rew
		e.lastObs = obs
		e.logStep(id, spec.Name, rew, obs, info)
		return StepResult{
			Observation: obs,
			Reward:      rew,
			Breakdown:   bd,
			Terminated:  true,
			Info:        info,
		}, nil
	}

	stepSeconds := e.now().Sub(started).Seconds()
	info["success"] = success
	rew, bd := e.engine.Score(spec.Name, success, obs.State(), stepSeconds)
	e.stepCount++
	e.episodeReward += rew
	e.lastObs = obs
	e.logStep(id, spec.Name, rew, obs, info)

	res := StepResult{
		Observation: obs,
		Reward:      rew,
		Breakdown:   bd,
		Info:        info,
	}

	// Leaving the application's origin terminates the episode.
	if u, err := e.drv.CurrentURL(ctx); err != nil {
		e.logger.Error("current url", "error", err)
		res.Terminated = true
		info["error"] = err.Error()
	} else if e.origin != "" && !strings.HasPrefix(u, e.origin) {
		e.logger.Warn("session left application", "url", u)
		res.Terminated = true
		info["final_url"] = u
	}

	return e.finishStep(res), nil
}

// finishStep applies the truncation limits shared by all step outcomes.
func (e *Environment) finishStep(res StepResult) StepResult {
	if e.stepCount >= e.cfg.MaxEpisodeSteps {
		res.Truncated = true
	}
	if e.now().Sub(e.episodeStart) > time.Duration(e.cfg.MaxEpisodeSteps)*perStepTimeBudget {
		res.Truncated = true
	}
	return res
}

func (e *Environment) logStep(id action.ID, name string, rew float64, obs observe.Observation, info map[string]any) {
	if e.tracker == nil {
		return
	}
	e.tracker.LogStep(e.stepCount-1, int(id), name, rew, obs, info)
}

// Finish seals the current episode through the tracker and returns its
// summary. The boolean is false when no tracker is attached or no episode is
// in flight.
func (e *Environment) Finish(reason episode.Reason) (models.EpisodeSummary, bool) {
	if !e.inEpisode {
		return models.EpisodeSummary{}, false
	}
	e.inEpisode = false
	if e.tracker == nil {
		return models.EpisodeSummary{}, false
	}
	sum := e.tracker.EndEpisode(e.episodeReward, e.stepCount, reason, e.engine)
	e.logger.Info("episode finished",
		"episode", sum.EpisodeNumber,
		"reward", sum.EpisodeReward,
		"length", sum.EpisodeLength,
		"reason", string(reason))
	return sum, true
}

// EpisodeReward returns the reward accumulated in the current episode.
func (e *Environment) EpisodeReward() float64 {
	return e.episodeReward
}

// StepCount returns the number of steps taken in the current episode.
func (e *Environment) StepCount() int {
	return e.stepCount
}

// Close releases the underlying driver session.
func (e *Environment) Close() error {
	return e.drv.Close()
}

// originOf reduces a URL to its scheme and host, the prefix a session must
// stay under.
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
