// Package cli defines the cobra command tree for steamnoodles.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/spacesedan/steamnoodles/config"
	"github.com/spacesedan/steamnoodles/internal/logging"
)

type rootOptions struct {
	env      string
	format   string
	settings config.Settings
}

// NewRootCmd creates the root command. Settings are loaded from the
// environment (and config/envs/.env.<env>) before any subcommand runs.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "steamnoodles",
		Short:         "Classify customer feedback and chart sentiment trends",
		Long:          "Classify restaurant reviews, draft replies to them, and chart how sentiment moves over a date range given in plain English.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(opts.env)
			settings, err := config.Load()
			if err != nil {
				return err
			}
			logging.InitLogger(settings.LogLevel)
			opts.settings = settings
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.env, "env", "dev", "environment file to load from config/envs")
	root.PersistentFlags().StringVar(&opts.format, "format", "text", "output format (text|json)")

	root.AddCommand(
		newServeCmd(opts),
		newFeedbackCmd(opts),
		newTrendsCmd(opts),
		newSeedCmd(opts),
	)

	return root
}

func (o *rootOptions) isJSON() bool {
	return o.format == "json"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
