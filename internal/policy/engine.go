package policy

import (
	"strings"

	"github.com/vitalcare/vitalcare/internal/auth"
)

// PublicRoutes is the allowlist checked before anything else. Exact paths
// and prefixes are both supported; any match short-circuits to allowed
// without requiring a principal.
type PublicRoutes struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewPublicRoutes builds the allowlist from exact paths and prefixes.
func NewPublicRoutes(exact []string, prefixes []string) *PublicRoutes {
	set := make(map[string]struct{}, len(exact))
	for _, path := range exact {
		set[path] = struct{}{}
	}
	return &PublicRoutes{exact: set, prefixes: prefixes}
}

// Contains reports whether the path is public.
func (pr *PublicRoutes) Contains(path string) bool {
	if pr == nil {
		return false
	}
	if _, ok := pr.exact[path]; ok {
		return true
	}
	for _, prefix := range pr.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Engine evaluates principals against the route-access table. It is pure:
// no I/O, no clock, no mutation, so the same inputs always produce the
// same Decision.
type Engine struct {
	entries []Entry
	public  *PublicRoutes
}

// NewEngine constructs an Engine over the given table and allowlist.
func NewEngine(entries []Entry, public *PublicRoutes) *Engine {
	return &Engine{entries: entries, public: public}
}

// Decide produces the access verdict for a path and principal.
//
// Order of evaluation: public allowlist, authentication, first matching
// table entry, role membership (id, then name, then legacy category),
// then required permissions. An unmatched path is open to any
// authenticated principal.
func (e *Engine) Decide(path string, principal *auth.Principal) Decision {
	if e.public.Contains(path) {
		return Decision{Allowed: true}
	}
	if principal == nil {
		return Decision{Reason: ReasonNotAuthenticated, Redirect: LoginRoute}
	}
	entry, matched := e.match(path)
	if !matched {
		return Decision{Allowed: true}
	}
	if !roleAllowed(entry, principal) {
		return Decision{Reason: ReasonInsufficientRole, Redirect: entry.Fallback}
	}
	if len(entry.Permissions) > 0 && principal.Permissions != nil {
		for _, required := range entry.Permissions {
			if !principal.HasPermission(required) {
				return Decision{Reason: ReasonMissingPermissions, Redirect: entry.Fallback}
			}
		}
	}
	return Decision{Allowed: true}
}

// Match exposes the first matching entry for a path; used by callers that
// need the declared permission requirements (the client gate).
func (e *Engine) Match(path string) (Entry, bool) {
	return e.match(path)
}

func (e *Engine) match(path string) (Entry, bool) {
	for _, entry := range e.entries {
		if strings.HasPrefix(path, entry.Prefix) {
			return entry, true
		}
	}
	return Entry{}, false
}

func roleAllowed(entry Entry, principal *auth.Principal) bool {
	if principal.RoleID != nil {
		for _, id := range entry.RoleIDs {
			if id == *principal.RoleID {
				return true
			}
		}
	}
	if principal.RoleName != "" {
		for _, name := range entry.RoleNames {
			if strings.EqualFold(name, principal.RoleName) {
				return true
			}
		}
	}
	if principal.LegacyRole != auth.CategoryNone {
		for _, legacy := range entry.LegacyRoles {
			if legacy == principal.LegacyRole {
				return true
			}
		}
	}
	return false
}
