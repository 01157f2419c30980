package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAdminCreate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORTAL_DATABASE_FILE", filepath.Join(dir, "portal.db"))
	t.Setenv("PORTAL_PEPPER_FILE", filepath.Join(dir, "pepper"))

	out, err := run(t, adminCmd(), "create", "--email", "Registrar@Institute.edu", "--name", "Registrar")
	require.NoError(t, err)
	require.Contains(t, out, "created admin registrar@institute.edu")
	require.Contains(t, out, "password: ")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	password := strings.TrimPrefix(lines[len(lines)-1], "password: ")
	require.Len(t, password, 12)

	_, err = run(t, adminCmd(), "create", "--email", "registrar@institute.edu", "--name", "Again")
	require.ErrorContains(t, err, "already exists")

	out, err = run(t, adminCmd(), "create",
		"--email", "audit@institute.edu", "--name", "Audit",
		"--role", "internal-auditor", "--password", "chosen-password")
	require.NoError(t, err)
	require.Contains(t, out, "created internal_auditor audit@institute.edu")
	require.NotContains(t, out, "password:")

	_, err = run(t, adminCmd(), "create", "--email", "x@institute.edu", "--name", "X", "--role", "dean")
	require.ErrorContains(t, err, "invalid --role")
}

func TestPolicyCheck(t *testing.T) {
	out, err := run(t, policyCmd(), "check")
	require.NoError(t, err)
	require.Contains(t, out, "unmatched: deny")
	require.Contains(t, out, "/admin")

	file := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`unmatched: allow
public: [/, /login]
protected:
  - prefix: /reports
    roles: [admin, internal-auditor]
`), 0o600))

	out, err = run(t, policyCmd(), "check", file)
	require.NoError(t, err)
	require.Contains(t, out, "unmatched: allow")
	require.Contains(t, out, "admin,internal_auditor")

	require.NoError(t, os.WriteFile(file, []byte("protected:\n  - prefix: /x\n    roles: [dean]\n"), 0o600))
	_, err = run(t, policyCmd(), "check", file)
	require.Error(t, err)
}
