package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "List the versions of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				records, err := c.GetVersionService().History(ctx, args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(records))
				for _, r := range records {
					closed := "open"
					if r.ClosedAt != nil {
						closed = r.ClosedAt.Local().Format(time.DateTime)
					}
					rows = append(rows, []string{
						strconv.Itoa(r.Version),
						r.Description,
						string(r.Significance),
						r.OpenedBy,
						r.CreatedAt.Local().Format(time.DateTime),
						closed,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Version", "Description", "Significance", "Opened by", "Opened", "Closed"},
					rows,
					[]columnAlignment{alignRight},
				))
				return nil
			})
		},
	}
}
