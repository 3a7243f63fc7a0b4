package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newStepCmd(opts *rootOptions) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "step <id> <workflow> <version> <step> <status>",
		Short: "Set the status of a workflow step",
		Long:  "Set the status of a workflow step (waiting, started, completed, error, skipped).",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, name, stepName := args[0], args[1], args[3]
			if !workflow.IsKnown(name) {
				return fmt.Errorf("%w: %q", workflow.ErrUnknownWorkflow, name)
			}
			v, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[2], err)
			}
			status, err := workflow.ParseStepStatus(args[4])
			if err != nil {
				return err
			}

			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				if err := c.GetStepUpdater().SetStepStatus(ctx, id, name, v, stepName, status, message); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s v%d: %s is %s\n", id, name, v, stepName, status)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "status message")
	return cmd
}
