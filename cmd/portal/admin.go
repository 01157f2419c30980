package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/portal/internal/portal/app"
	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage portal accounts offline",
	}

	cmd.AddCommand(adminCreateCmd())

	return cmd
}

func adminCreateCmd() *cobra.Command {
	var (
		email    string
		name     string
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account directly in the database",
		Long: `Create an account directly in the database. This is how the first
administrator is provisioned. A password is generated and printed when
--password is not given.

Examples:
  portal admin create --email registrar@institute.edu --name Registrar
  portal admin create --email audit@institute.edu --name Audit --role internal-auditor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return fmt.Errorf("invalid --role %q", role)
			}

			cfg := app.LoadStorageConfig()
			db, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			hasher, err := app.OpenHasher(cfg)
			if err != nil {
				return err
			}

			accounts := &service.AccountService{Store: db, Hasher: hasher}
			p, plain, err := accounts.CreateAccount(context.Background(), service.NewAccount{
				Email:    email,
				Name:     name,
				Role:     r,
				Password: password,
			})
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("an account for %s already exists", domain.NormalizeEmail(email))
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %s %s (%s)\n", p.Role, p.Email, p.ID)
			if password == "" {
				fmt.Fprintf(out, "password: %s\n", plain)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "Role: admin, director or internal-auditor")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (generated when empty)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
