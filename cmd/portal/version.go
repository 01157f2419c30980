package main

import (
	"fmt"
	"runtime"

	"github.com/aussiebroadwan/portal/internal/portal/app"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portal %s (%s %s/%s)\n", app.BuildVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
