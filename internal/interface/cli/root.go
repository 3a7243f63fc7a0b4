package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	infraConfig "github.com/sul-dlss/dor-services-app-sub001/internal/infra/config"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
	"github.com/sul-dlss/dor-services-app-sub001/internal/interface/cli/version"
)

// rootOptions are shared by every subcommand
type rootOptions struct {
	home string
	fs   afero.Fs
}

// NewRoot builds the versionctl command tree
func NewRoot() *cobra.Command {
	return newRoot(afero.NewOsFs())
}

func newRoot(fs afero.Fs) *cobra.Command {
	opts := &rootOptions{fs: fs}

	cmd := &cobra.Command{
		Use:           "versionctl",
		Short:         "Administer the version lifecycle of repository objects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&opts.home, "home", "", "base directory holding setting.yaml (default $"+infraConfig.HomeEnv+" or "+infraConfig.DefaultHome+")")

	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newOpenCmd(opts))
	cmd.AddCommand(newCloseCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newStepCmd(opts))
	cmd.AddCommand(newPreservationCmd(opts))
	cmd.AddCommand(newEventsCmd(opts))
	cmd.AddCommand(version.NewCommand())
	return cmd
}

// withContainer loads settings, builds the container for one command and
// closes it afterwards so queued events are flushed.
func (o *rootOptions) withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *di.Container) error) (err error) {
	cfg, err := infraConfig.LoadSettings(o.fs, infraConfig.ResolveHome(o.home))
	if err != nil {
		return err
	}

	container, err := di.NewContainer(di.Config{App: cfg, Fs: o.fs})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := container.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close: %w", cerr)
		}
	}()

	return fn(cmd.Context(), container)
}
