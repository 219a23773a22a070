package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/action"
)

func newActionsCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the discrete action catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tBASE REWARD")
			for _, spec := range action.All() {
				if category != "" && string(spec.Category) != category {
					continue
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n",
					int(spec.ID), spec.Name, spec.Category, action.BaseReward(spec.Name))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list one category (navigation, project, task, collaboration, view)")
	return cmd
}
