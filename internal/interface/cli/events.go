package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newEventsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "events <id>",
		Short: "List recorded lifecycle events for an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				events, err := c.GetEventReader().ListEvents(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(events))
				for _, e := range events {
					payload, err := json.Marshal(e.Payload)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						e.CreatedAt.Local().Format(time.DateTime),
						e.EventType,
						string(payload),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Time", "Event", "Data"}, rows, nil))
				return nil
			})
		},
	}
}
