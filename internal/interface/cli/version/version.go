package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sul-dlss/dor-services-app-sub001/internal/buildinfo"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version, build information, and runtime details",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "versionctl version %s\n", buildinfo.GetVersion())
			if commit := buildinfo.GetCommit(); commit != "" {
				fmt.Fprintf(out, "  Commit:        %s\n", commit)
			}
			fmt.Fprintf(out, "  Go version:    %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "  Compiler:      %s\n", runtime.Compiler)
		},
	}
}
