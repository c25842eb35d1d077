package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sydlexius/audible-agent/internal/config"
	"github.com/sydlexius/audible-agent/internal/provider"
	"github.com/sydlexius/audible-agent/internal/provider/audible"
	"github.com/sydlexius/audible-agent/internal/version"
)

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "audible-agent",
		Short:         "Audible metadata agent for Plex Media Server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath(), "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newLookupCmd(opts))
	root.AddCommand(newMatchCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("AUD_CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// loadConfig reads the dotenv file, then the config file and environment.
func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newAdapter builds the catalog client from config.
func newAdapter(cfg *config.Config, logger *slog.Logger) *audible.Adapter {
	limiter := provider.NewRateLimiterMapWithLimits(cfg.Audible.Limits())
	return audible.NewWithOptions(limiter, logger, audible.Options{
		APIBaseURL:  cfg.Audible.APIBaseURL,
		SiteBaseURL: cfg.Audible.SiteBaseURL,
		ImageSizes:  cfg.Audible.ImageSizes,
		Timeout:     cfg.Audible.Timeout,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "audible-agent %s (%s)\n", version.Version, version.Commit)
			return err
		},
	}
}
