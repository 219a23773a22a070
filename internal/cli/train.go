package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
	"github.com/marvelxcodes/asana-rl-gym/internal/driver"
	"github.com/marvelxcodes/asana-rl-gym/internal/env"
	"github.com/marvelxcodes/asana-rl-gym/internal/episode"
	"github.com/marvelxcodes/asana-rl-gym/internal/otel"
	"github.com/marvelxcodes/asana-rl-gym/internal/reward"
	"github.com/marvelxcodes/asana-rl-gym/internal/store"
	"github.com/marvelxcodes/asana-rl-gym/pkg/models"
)

func newTrainCmd(opts *rootOptions) *cobra.Command {
	var (
		scenario    string
		episodes    int
		maxSteps    int
		useStub     bool
		weightsFile string
		metricsAddr string
		resume      bool
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run training episodes against the target application",
		RunE: func(cmd *cobra.Command, args []string) error {
			if episodes < 1 {
				return fmt.Errorf("--episodes must be at least 1")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if maxSteps > 0 {
				cfg.MaxEpisodeSteps = maxSteps
			}
			if scenario != "" {
				cfg.Scenario = scenario
			}
			if weightsFile != "" {
				cfg.WeightsFile = weightsFile
			}

			weights := reward.DefaultWeights()
			if cfg.Scenario != "" {
				var ok bool
				if weights, ok = reward.ForScenario(cfg.Scenario); !ok {
					slog.Warn("unknown scenario, using default weights", "scenario", cfg.Scenario)
				}
			}
			if cfg.WeightsFile != "" {
				if weights, err = reward.LoadWeightsFile(cfg.WeightsFile); err != nil {
					return err
				}
			}

			ctx := cmd.Context()

			idx, err := store.OpenIndex(cfg.LogDir)
			if err != nil {
				return fmt.Errorf("open episode index: %w", err)
			}
			defer func() { _ = idx.Close() }()
			archive, err := store.NewArchive(cfg.LogDir, idx)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			tracker := episode.NewTracker(archive, runID, slog.Default())
			if resume {
				restored, err := tracker.LoadTrainingHistory()
				if err != nil {
					return fmt.Errorf("resume: %w", err)
				}
				if restored {
					slog.Info("resumed training history",
						"episodes", tracker.History().TotalEpisodes,
						"steps", tracker.History().TotalSteps)
				}
			}
			defer func() {
				if err := tracker.SaveTrainingSummary(); err != nil {
					slog.Error("save training summary", "error", err)
				}
			}()

			var drv driver.Driver
			if useStub {
				drv = driver.NewStub()
			} else {
				hd := driver.NewHTTPDriver(cfg.BridgeURL, cfg.Username, cfg.Password)
				if ok, err := hd.Health(ctx); err != nil || !ok {
					return fmt.Errorf("automation bridge at %s not ready: %v", cfg.BridgeURL, err)
				}
				drv = hd
			}

			if metricsAddr != "" {
				stopMetrics := startMetricsServer(ctx, metricsAddr)
				defer stopMetrics()
			}

			environment := env.New(cfg, drv, reward.NewEngine(weights, cfg.ActionTimeoutSeconds), tracker, slog.Default())
			defer func() { _ = environment.Close() }()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			slog.Info("training started",
				"run_id", runID,
				"episodes", episodes,
				"max_steps", cfg.MaxEpisodeSteps,
				"scenario", cfg.Scenario,
				"stub", useStub,
				"seed", seed)

			for ep := 1; ep <= episodes; ep++ {
				if ctx.Err() != nil {
					slog.Info("training interrupted", "completed_episodes", ep-1)
					break
				}
				sum, err := runEpisode(ctx, environment, rng, cfg.Scenario)
				if err != nil {
					return err
				}
				if ep%10 == 0 || ep == episodes {
					slog.Info("training progress",
						"episode", sum.EpisodeNumber,
						"reward", sum.EpisodeReward,
						"recent_avg_reward", sum.RecentAvgReward,
						"recent_avg_success", sum.RecentAvgSuccessRate,
						"reward_trend", sum.RewardTrend)
				}
			}

			if m, ok := tracker.PerformanceMetrics(); ok {
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "episodes:       %d\n", m.EpisodesCompleted)
				_, _ = fmt.Fprintf(out, "total steps:    %d\n", m.TotalSteps)
				_, _ = fmt.Fprintf(out, "average reward: %.2f\n", m.AverageReward)
				_, _ = fmt.Fprintf(out, "recent average: %.2f\n", m.RecentAverageReward)
				_, _ = fmt.Fprintf(out, "best / worst:   %.2f / %.2f\n", m.BestReward, m.WorstReward)
				_, _ = fmt.Fprintf(out, "reward trend:   %+.3f per episode\n", m.ImprovementTrend)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Reward scenario preset (see `asanagym scenarios`)")
	cmd.Flags().IntVar(&episodes, "episodes", 10, "Number of episodes to run")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Override max steps per episode")
	cmd.Flags().BoolVar(&useStub, "stub", false, "Use the in-memory application stub instead of the browser bridge")
	cmd.Flags().StringVar(&weightsFile, "weights", "", "JSON file of reward weight overrides")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus /metrics on this address (e.g. :9464)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the training summary in the log directory")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random policy seed (0 picks one from the clock)")
	return cmd
}

// runEpisode drives one episode with a uniform random policy and seals it.
func runEpisode(ctx context.Context, environment *env.Environment, rng *rand.Rand, scenario string) (sum models.EpisodeSummary, err error) {
	if _, _, err := environment.Reset(ctx); err != nil {
		return sum, fmt.Errorf("reset: %w", err)
	}
	reason := episode.ReasonTruncated
	for {
		if ctx.Err() != nil {
			break
		}
		id := action.ID(rng.Intn(environment.ActionSpace()))
		started := time.Now()
		res, err := environment.Step(ctx, id)
		if err != nil {
			return sum, err
		}
		success, _ := res.Info["success"].(bool)
		name, _ := res.Info["action_name"].(string)
		otel.RecordStep(ctx, name, categoryOf(name), time.Since(started), res.Reward, success)
		if res.Terminated {
			reason = episode.ReasonTerminated
			break
		}
		if res.Truncated {
			reason = episode.ReasonTruncated
			break
		}
	}
	s, _ := environment.Finish(reason)
	otel.RecordEpisode(ctx, scenario, string(reason), s.EpisodeReward, s.EpisodeLength)
	return s, nil
}

func categoryOf(name string) string {
	if id, ok := action.ByName(name); ok {
		if spec, ok := action.Lookup(id); ok {
			return string(spec.Category)
		}
	}
	return ""
}

// startMetricsServer exposes /metrics until the context is canceled. Returns
// a function that stops the server.
func startMetricsServer(ctx context.Context, addr string) func() {
	handler, err := otel.InitMeterProvider(ctx, "asanagym")
	if err != nil {
		slog.Warn("otel init failed, metrics disabled", "error", err)
		return func() {}
	}
	if err := otel.InitMetrics(ctx); err != nil {
		slog.Warn("metric instruments init failed", "error", err)
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
