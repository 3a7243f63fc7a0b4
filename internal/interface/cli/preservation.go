package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newPreservationCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preservation",
		Short: "Manage the local preservation registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <id> <version>",
		Short: "Record the version preservation holds for an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid version %q", args[1])
			}
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				recorder, err := c.GetPreservationRecorder()
				if err != nil {
					return err
				}
				if err := recorder.SetVersion(ctx, args[0], v); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preserved version of %s set to %d\n", args[0], v)
				return nil
			})
		},
	})
	return cmd
}
