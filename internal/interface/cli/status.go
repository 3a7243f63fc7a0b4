package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/infrastructure/di"
)

// StatusOutput is the JSON shape of the status command
type StatusOutput struct {
	ObjectID              string `json:"object_id"`
	Version               int    `json:"version"`
	State                 string `json:"state"`
	Description           string `json:"description"`
	Significance          string `json:"significance,omitempty"`
	Accessioned           bool   `json:"accessioned"`
	Accessioning          bool   `json:"accessioning"`
	Assembling            bool   `json:"assembling"`
	ActiveVersionWorkflow bool   `json:"active_version_workflow"`
	Openable              bool   `json:"openable"`
	Closeable             bool   `json:"closeable"`
	PreservationVersion   int    `json:"preservation_version"`
	LockToken             string `json:"lock_token"`
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the version lifecycle state of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				svc := c.GetVersionService()
				status, err := svc.Status(ctx, args[0])
				if err != nil {
					return err
				}
				token, err := svc.LockToken(ctx, args[0])
				if err != nil {
					return err
				}
				out := toStatusOutput(status, token.String())

				if jsonOutput {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Object", out.ObjectID},
					{"Version", strconv.Itoa(out.Version)},
					{"State", out.State},
					{"Description", out.Description},
					{"Significance", out.Significance},
					{"Accessioned", yesNo(out.Accessioned)},
					{"Accessioning", yesNo(out.Accessioning)},
					{"Assembling", yesNo(out.Assembling)},
					{"Can open", yesNo(out.Openable)},
					{"Can close", yesNo(out.Closeable)},
					{"Preserved version", strconv.Itoa(out.PreservationVersion)},
					{"Lock", out.LockToken},
				}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	return cmd
}

func toStatusOutput(s *versionmodel.Status, token string) StatusOutput {
	return StatusOutput{
		ObjectID:              s.ObjectID,
		Version:               s.Version,
		State:                 string(s.State),
		Description:           s.Description,
		Significance:          s.Significance,
		Accessioned:           s.Accessioned,
		Accessioning:          s.Accessioning,
		Assembling:            s.Assembling,
		ActiveVersionWorkflow: s.ActiveVersionWorkflow,
		Openable:              s.Openable,
		Closeable:             s.Closeable,
		PreservationVersion:   s.PreservationVersion,
		LockToken:             token,
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
