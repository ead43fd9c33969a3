package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s21toolkit/s21introspector/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", info.Name, info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), " - git: %s\n", info.GitCommit)
			fmt.Fprintf(cmd.OutOrStdout(), " - built: %s\n", info.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), " - go: %s\n", info.GoVersion)
			return nil
		},
	}
}
