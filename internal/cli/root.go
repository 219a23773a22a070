// Package cli implements the asanagym command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marvelxcodes/asana-rl-gym/internal/config"
)

// rootOptions carries persistent flag state shared by subcommands.
type rootOptions struct {
	configPath string
	logDir     string
	verbose    bool
}

// loadConfig resolves the effective configuration: file (or defaults) with
// persistent flag overrides applied.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logDir != "" {
		cfg.LogDir = o.logDir
	}
	return cfg, nil
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "asanagym",
		Short:        "asanagym — RL training environment for a web task manager",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to environment config YAML (default: built-in defaults)")
	cmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "", "Override the training log directory")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newTrainCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newEpisodesCmd(opts))
	cmd.AddCommand(newActionsCmd())
	cmd.AddCommand(newScenariosCmd())
	cmd.AddCommand(newConfigCmd(opts))

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
