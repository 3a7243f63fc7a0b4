package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	versionusecase "github.com/sul-dlss/dor-services-app-sub001/internal/application/usecase/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var req versionusecase.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register <id>",
		Short: "Register a new object at version 1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ID = args[0]
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				snap, err := c.GetVersionService().Register(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s at version %d\n", snap.ExternalID, snap.Version)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Label, "label", "", "object label")
	cmd.Flags().StringVar(&req.ObjectType, "type", "", "object type (default item)")
	cmd.Flags().StringVar(&req.Who, "user", "", "who is registering the object")
	cmd.Flags().BoolVar(&req.StartAccession, "start-accession", false, "start accessionWF for version 1")
	return cmd
}
