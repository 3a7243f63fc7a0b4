package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	versionusecase "github.com/sul-dlss/dor-services-app-sub001/internal/application/usecase/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newCloseCmd(opts *rootOptions) *cobra.Command {
	var (
		req          versionusecase.CloseRequest
		significance string
	)

	cmd := &cobra.Command{
		Use:   "close <id> <version>",
		Short: "Close the open version of an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[1], err)
			}
			if req.Significance, err = object.ParseSignificance(significance); err != nil {
				return err
			}

			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				if err := c.GetVersionService().Close(ctx, args[0], v, req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Closed %s version %d\n", args[0], v)
				if req.StartAccession {
					fmt.Fprintln(cmd.OutOrStdout(), "Accessioning started")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.Description, "message", "m", "", "replace the version description")
	cmd.Flags().StringVar(&significance, "significance", "", "major, minor or admin")
	cmd.Flags().StringVar(&req.Closer, "user", "", "who is closing the version")
	cmd.Flags().BoolVar(&req.StartAccession, "start-accession", false, "start accessionWF for the closed version")
	return cmd
}
