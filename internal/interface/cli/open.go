package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	versionusecase "github.com/sul-dlss/dor-services-app-sub001/internal/application/usecase/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

func newOpenCmd(opts *rootOptions) *cobra.Command {
	var (
		description       string
		user              string
		lockToken         string
		assumeAccessioned bool
		skipLockReason    string
	)

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a new version of an accessioned object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var openOpts []versionusecase.OpenOption
			if lockToken != "" {
				token, err := lock.ParseToken(lockToken)
				if err != nil {
					return err
				}
				openOpts = append(openOpts, versionusecase.WithLockToken(token))
			}
			if assumeAccessioned {
				openOpts = append(openOpts, versionusecase.AssumeAccessioned())
			}
			if skipLockReason != "" {
				openOpts = append(openOpts, versionusecase.SkipLock(user, skipLockReason))
			}

			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				v, err := c.GetVersionService().Open(ctx, args[0], description, user, openOpts...)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Opened %s version %d\n", args[0], v)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "message", "m", "", "description of the new version")
	cmd.Flags().StringVar(&user, "user", "", "who is opening the version")
	cmd.Flags().StringVar(&lockToken, "lock", "", "lock token read earlier with status")
	cmd.Flags().BoolVar(&assumeAccessioned, "assume-accessioned", false, "skip the accessioned check")
	cmd.Flags().StringVar(&skipLockReason, "skip-lock", "", "bypass the lock check, recording this reason")
	return cmd
}

// explain adds a retry hint to stale lock failures
func explain(err error) error {
	var stale *lock.StaleLockError
	if errors.As(err, &stale) {
		return fmt.Errorf("%w (reload with status and retry)", err)
	}
	return err
}
