package main

import (
	"fmt"

	"github.com/aussiebroadwan/portal/internal/portal/app"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the portal HTTP server",
		Long: `Run the portal HTTP server until SIGINT or SIGTERM.

PORTAL_SESSION_SECRET must be set to at least 32 bytes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port (overrides PORT)")

	return cmd
}
