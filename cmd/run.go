package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artcava/XPoster/internal/logger"
	"github.com/artcava/XPoster/internal/schedule"
)

func newRunCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:               "run",
		Short:             "Run one invocation for the current hour",
		Long:              `Run selects the slot for now (or --at), generates its post and sends it. It exits non-zero only on unexpected failures.`,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := configFrom(ctx)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			defer func() { _ = log.Sync() }()

			clock := schedule.SystemClock
			if at != "" {
				t, parseErr := time.Parse(time.RFC3339, at)
				if parseErr != nil {
					return fmt.Errorf("parse --at: %w", parseErr)
				}
				clock = schedule.FixedClock(t)
			}

			app, err := newApp(ctx, cfg, clock, nil, log)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.poster.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s outcome=%s sent=%t",
				report.At.Format(time.RFC3339), report.Strategy, report.Channel, report.Outcome, report.Sent)
			if report.Reason != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " reason=%q", report.Reason)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate the schedule at this RFC3339 time instead of now")
	return cmd
}
