// Package guard classifies every page request as public or protected and
// enforces the role whitelist of protected areas before a handler runs.
//
// The guard only verifies the session token. It never reads storage, so it
// cannot see deactivation; handlers that expose data re-resolve the caller
// through the session package.
package guard

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"gopkg.in/yaml.v3"
)

// Unmatched decides what happens to paths no rule mentions.
type Unmatched string

const (
	UnmatchedDeny  Unmatched = "deny"
	UnmatchedAllow Unmatched = "allow"
)

var ErrInvalidPolicy = errors.New("guard: invalid policy")

// Rule grants access to a path prefix for a set of roles.
type Rule struct {
	Prefix string        `yaml:"prefix"`
	Roles  []domain.Role `yaml:"roles"`
}

// Policy is the route policy table.
type Policy struct {
	Unmatched Unmatched `yaml:"unmatched"`
	Public    []string  `yaml:"public"`
	Protected []Rule    `yaml:"protected"`
}

// DefaultPolicy is the built-in table: one protected area per role, with the
// login and unauthorized pages public.
func DefaultPolicy() *Policy {
	p := &Policy{
		Unmatched: UnmatchedDeny,
		Public:    []string{"/", "/login", "/unauthorized", "/static", "/favicon.ico"},
		Protected: []Rule{
			{Prefix: "/admin", Roles: []domain.Role{domain.RoleAdmin}},
			{Prefix: "/director", Roles: []domain.Role{domain.RoleDirector}},
			{Prefix: "/internal-auditor", Roles: []domain.Role{domain.RoleInternalAuditor}},
		},
	}
	if err := p.normalize(); err != nil {
		panic(err)
	}
	return p
}

// ParsePolicy reads a YAML policy:
//
//	unmatched: deny
//	public: [/, /login, /unauthorized]
//	protected:
//	  - prefix: /admin
//	    roles: [admin]
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.normalize(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicy reads a YAML policy file.
func LoadPolicy(file string) (*Policy, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read route policy: %w", err)
	}
	return ParsePolicy(data)
}

func (p *Policy) normalize() error {
	switch p.Unmatched {
	case "":
		p.Unmatched = UnmatchedDeny
	case UnmatchedDeny, UnmatchedAllow:
	default:
		return fmt.Errorf("%w: unmatched must be deny or allow, got %q", ErrInvalidPolicy, p.Unmatched)
	}

	for i, prefix := range p.Public {
		clean, err := cleanPrefix(prefix)
		if err != nil {
			return err
		}
		p.Public[i] = clean
	}

	seen := map[string]bool{}
	for i := range p.Protected {
		r := &p.Protected[i]
		clean, err := cleanPrefix(r.Prefix)
		if err != nil {
			return err
		}
		if seen[clean] {
			return fmt.Errorf("%w: duplicate protected prefix %q", ErrInvalidPolicy, clean)
		}
		seen[clean] = true
		r.Prefix = clean

		for j, role := range r.Roles {
			parsed, err := domain.ParseRole(string(role))
			if err != nil {
				return fmt.Errorf("%w: prefix %q: unknown role %q", ErrInvalidPolicy, clean, role)
			}
			r.Roles[j] = parsed
		}
	}
	return nil
}

func cleanPrefix(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if !strings.HasPrefix(prefix, "/") {
		return "", fmt.Errorf("%w: prefix %q must start with /", ErrInvalidPolicy, prefix)
	}
	return path.Clean(prefix), nil
}

// cleanPath maps any request path onto the form prefixes are stored in.
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// matches reports whether prefix covers p on a segment boundary. The root
// prefix only covers the root itself.
func matches(prefix, p string) bool {
	if prefix == "/" {
		return p == "/"
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// lookup returns the longest protected rule covering p.
func (p *Policy) lookup(reqPath string) (Rule, bool) {
	var (
		best  Rule
		found bool
	)
	for _, r := range p.Protected {
		if matches(r.Prefix, reqPath) && len(r.Prefix) > len(best.Prefix) {
			best, found = r, true
		}
	}
	return best, found
}

// publicPrefix returns the longest public prefix covering p, or "".
func (p *Policy) publicPrefix(reqPath string) string {
	best := ""
	for _, prefix := range p.Public {
		if matches(prefix, reqPath) && len(prefix) > len(best) {
			best = prefix
		}
	}
	return best
}

func (r Rule) permits(role domain.Role) bool {
	return slices.Contains(r.Roles, role)
}
