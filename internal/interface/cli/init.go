package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraConfig "github.com/sul-dlss/dor-services-app-sub001/internal/infra/config"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default setting.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := infraConfig.WriteDefaultSettings(opts.fs, infraConfig.ResolveHome(opts.home), force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing setting.yaml")
	return cmd
}
