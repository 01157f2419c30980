package guard

import (
	"github.com/aussiebroadwan/portal/internal/portal/domain"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

// Outcome is the terminal state of a guard evaluation.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating one request path.
type Decision struct {
	Outcome Outcome
	// ClearCookie is set when a token was presented but failed verification.
	ClearCookie bool
	// Rule names what classified the path: "public:<prefix>",
	// "protected:<prefix>" or "unmatched".
	Rule string
}

// Evaluate classifies reqPath and checks token against the matching rule.
// It is total: every input yields exactly one outcome.
//
// A path covered by both a public and a protected prefix goes to the longer
// of the two; on a tie the protected rule wins.
func (p *Policy) Evaluate(reqPath, token string, verifier tokenx.Codec) Decision {
	reqPath = cleanPath(reqPath)

	rule, protected := p.lookup(reqPath)
	public := p.publicPrefix(reqPath)

	switch {
	case public != "" && (!protected || len(public) > len(rule.Prefix)):
		return Decision{Outcome: Allow, Rule: "public:" + public}
	case protected:
		return authorize(rule, "protected:"+rule.Prefix, token, verifier)
	case p.Unmatched == UnmatchedAllow:
		return Decision{Outcome: Allow, Rule: "unmatched"}
	default:
		// Denied paths behave like a protected area no role may enter.
		return authorize(Rule{Prefix: reqPath}, "unmatched", token, verifier)
	}
}

func authorize(rule Rule, name, token string, verifier tokenx.Codec) Decision {
	if token == "" {
		return Decision{Outcome: RedirectLogin, Rule: name}
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return Decision{Outcome: RedirectLogin, ClearCookie: true, Rule: name}
	}

	if !rule.permits(domain.Role(claims.Role)) {
		return Decision{Outcome: RedirectUnauthorized, Rule: name}
	}
	return Decision{Outcome: Allow, Rule: name}
}
