package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/reward"
)

func newScenariosCmd() *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List reward scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if show != "" {
				w, ok := reward.ForScenario(show)
				if !ok {
					return fmt.Errorf("unknown scenario %q", show)
				}
				data, err := json.MarshalIndent(w, "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, string(data))
				return nil
			}
			for _, name := range reward.ScenarioNames() {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "Print the full weight set for one scenario")
	return cmd
}
