package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/driver"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check the automation bridge and capture one observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			hd := driver.NewHTTPDriver(cfg.BridgeURL, cfg.Username, cfg.Password)
			ok, err := hd.Health(ctx)
			if err != nil {
				return fmt.Errorf("bridge at %s unreachable: %w", cfg.BridgeURL, err)
			}
			if !ok {
				return fmt.Errorf("bridge at %s reports not ready", cfg.BridgeURL)
			}
			_, _ = fmt.Fprintf(out, "bridge:  %s ok\n", cfg.BridgeURL)

			if cfg.Username != "" {
				if err := hd.Login(ctx); err != nil {
					return fmt.Errorf("login: %w", err)
				}
				_, _ = fmt.Fprintf(out, "login:   %s ok\n", cfg.Username)
			}
			if err := hd.Navigate(ctx, "/"); err != nil {
				return fmt.Errorf("navigate: %w", err)
			}

			obs, err := hd.Observe(ctx, cfg.Mode())
			if err != nil {
				return fmt.Errorf("observe: %w", err)
			}
			_, _ = fmt.Fprintf(out, "mode:    %s\n", string(obs.Mode))
			if obs.Structured != nil {
				s := obs.Structured
				_, _ = fmt.Fprintf(out, "tasks:   pending=%d active=%d completed=%d\n",
					s.TaskCounts[0], s.TaskCounts[1], s.TaskCounts[2])
				_, _ = fmt.Fprintf(out, "projects: %d, view: %s\n", s.ProjectCount, s.CurrentView)
			}
			if obs.Visual != nil {
				_, _ = fmt.Fprintf(out, "frame:   %dx%d (%d bytes)\n",
					obs.Visual.Width, obs.Visual.Height, len(obs.Visual.Pixels))
			}

			u, err := hd.CurrentURL(ctx)
			if err != nil {
				return fmt.Errorf("current url: %w", err)
			}
			_, _ = fmt.Fprintf(out, "url:     %s\n", u)
			return nil
		},
	}
	return cmd
}
