package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

//go:generate swag init -g internal/portal/http/router.go -d ../.. -o ../../api/portal --parseInternal

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Training institute portal",
		Long: `Portal serves the training institute web portal: login, session
resolution, role-based page guarding and the administration API.

Configuration is read from the environment (PORTAL_SESSION_SECRET,
PORTAL_DATABASE_FILE, PORTAL_PEPPER_FILE, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		adminCmd(),
		policyCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
