package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/store"
)

func newEpisodesCmd(opts *rootOptions) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List recent episodes from the episode index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			idx, err := store.OpenIndex(cfg.LogDir)
			if err != nil {
				return fmt.Errorf("open episode index: %w", err)
			}
			defer func() { _ = idx.Close() }()

			ctx := cmd.Context()
			rows, err := idx.RecentEpisodes(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				_, _ = fmt.Fprintf(out, "no episodes indexed in %s\n", cfg.LogDir)
				return nil
			}

			w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "EPISODE\tRUN\tSTEPS\tREWARD\tBONUS\tREASON\tDURATION")
			for _, r := range rows {
				run := r.RunID
				if len(run) > 8 {
					run = run[:8]
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\t%s\t%.1fs\n",
					r.EpisodeNumber, run, r.EpisodeLength, r.TotalReward,
					r.EpisodeBonus, r.TerminationReason, r.DurationSeconds)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			totals, err := idx.RunTotals(ctx, runID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\n%d episodes indexed, %d steps, %.2f total reward\n",
				totals.Episodes, totals.Steps, totals.TotalReward)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum episodes to list")
	cmd.Flags().StringVar(&runID, "run", "", "Restrict totals to one run ID")
	return cmd
}
