package main

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/guard"
	"github.com/spf13/cobra"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect route policies",
	}

	cmd.AddCommand(policyCheckCmd())

	return cmd
}

func policyCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a route policy file and print the resulting table",
		Long: `Validate a YAML route policy and print the table the guard would use.
Without a file the built-in policy is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := guard.DefaultPolicy()
			if len(args) == 1 {
				var err error
				if policy, err = guard.LoadPolicy(args[0]); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "unmatched: %s\n", policy.Unmatched)
			fmt.Fprintf(out, "public:    %s\n", strings.Join(policy.Public, " "))
			for _, rule := range policy.Protected {
				roles := make([]string, len(rule.Roles))
				for i, r := range rule.Roles {
					roles[i] = r.String()
				}
				fmt.Fprintf(out, "protected: %-20s %s\n", rule.Prefix, strings.Join(roles, ","))
			}
			return nil
		},
	}

	return cmd
}
