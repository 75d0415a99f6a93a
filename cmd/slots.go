package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/artcava/XPoster/internal/schedule"
)

func newSlotsCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "slots",
		Short:             "Print the effective time-slot table",
		Long:              `Print the strategy and channel bound to every hour of the day. Unmapped hours show nosend.`,
		PersistentPreRunE: setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			slots, err := schedule.FromConfig(cfg.Slots)
			if err != nil {
				return fmt.Errorf("slot table: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.SetTitle("Time slots (" + cfg.Schedule.Timezone + ")")
			t.AppendHeader(table.Row{"Hour", "Strategy", "Channel"})
			for _, s := range slots.Day() {
				t.AppendRow(table.Row{fmt.Sprintf("%02d", s.Hour), s.Strategy.String(), s.Channel.String()})
			}
			t.Render()
			return nil
		},
	}
}
