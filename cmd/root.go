// Package cmd implements the xposter command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artcava/XPoster/internal/config"
	"github.com/artcava/XPoster/internal/logger"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug forces the debug log level for all commands.
	Debug bool
)

type configKey struct{}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xposter",
		Short:         "Scheduled crypto promo post generator",
		Long:          `xposter picks the strategy and channel bound to the current hour, generates a post and sends it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(),
		newServeCommand(),
		newSlotsCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// setup loads the configuration and the logger and stores both on the
// command context. Subcommands that need them use it as PersistentPreRunE.
func setup(cmd *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath(config.DefaultPath)
	}

	cfg, err := config.LoadWithDefaults(path, config.SetDefaults)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if Debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	log = log.With(logger.String("service", "xposter"))

	ctx := logger.WithContext(cmd.Context(), log)
	ctx = context.WithValue(ctx, configKey{}, cfg)
	cmd.SetContext(ctx)
	return nil
}

func configFrom(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xposter version %s\n", Version)
		},
	}
}
