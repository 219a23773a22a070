package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/store"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cumulative training statistics from the log directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			archive, err := store.NewArchive(cfg.LogDir, nil)
			if err != nil {
				return err
			}
			sum, err := archive.LoadSummary()
			if err != nil {
				return err
			}
			if sum == nil {
				_, _ = fmt.Fprintf(out, "no training summary in %s\n", cfg.LogDir)
				return nil
			}

			_, _ = fmt.Fprintf(out, "log dir:        %s\n", cfg.LogDir)
			if sum.RunID != "" {
				_, _ = fmt.Fprintf(out, "last run:       %s\n", sum.RunID)
			}
			_, _ = fmt.Fprintf(out, "episodes:       %d\n", sum.TotalEpisodes)
			_, _ = fmt.Fprintf(out, "total steps:    %d\n", sum.TotalSteps)
			_, _ = fmt.Fprintf(out, "total reward:   %.2f\n", sum.TotalReward)
			_, _ = fmt.Fprintf(out, "average reward: %.2f\n", sum.AverageReward)
			_, _ = fmt.Fprintf(out, "best / worst:   %.2f / %.2f\n", sum.BestEpisodeReward, sum.WorstEpisodeReward)
			_, _ = fmt.Fprintf(out, "saved at:       %s\n", sum.SavedAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	return cmd
}
