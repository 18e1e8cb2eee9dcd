// Package policy is the canonical route-access policy shared by the edge
// and client gates. Both boundaries evaluate the same table through the
// same engine, so they cannot drift apart.
package policy

import (
	"net/url"

	"github.com/vitalcare/vitalcare/internal/auth"
)

// Reason classifies why access was denied. Values travel in the `error`
// query parameter of denial redirects.
type Reason string

const (
	// ReasonNone marks an allowed decision.
	ReasonNone Reason = ""
	// ReasonNotAuthenticated means no usable credential was presented.
	ReasonNotAuthenticated Reason = "not-authenticated"
	// ReasonInsufficientRole means the credential's role is not allowed in.
	ReasonInsufficientRole Reason = "insufficient-role"
	// ReasonMissingPermissions means the role passed but a fine-grained
	// permission is absent.
	ReasonMissingPermissions Reason = "missing-permissions"
	// ReasonAccessDenied is the generic catch-all.
	ReasonAccessDenied Reason = "access-denied"
)

// Decision is the verdict for one (path, principal) evaluation. Produced
// and consumed within a single check, never persisted.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Reason   Reason `json:"reason,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// RedirectURL builds the full denial target, annotating the redirect route
// with the reason and the originally requested path so the destination can
// render a human-readable message.
func (d Decision) RedirectURL(from string) string {
	if d.Allowed || d.Redirect == "" {
		return ""
	}
	query := url.Values{}
	if d.Reason != ReasonNone {
		query.Set("error", string(d.Reason))
	}
	if from != "" {
		query.Set("from", from)
	}
	if encoded := query.Encode(); encoded != "" {
		return d.Redirect + "?" + encoded
	}
	return d.Redirect
}

// Entry protects one route prefix. Matching is first-prefix-wins in table
// order, so overlapping prefixes must be declared most-specific first.
// A principal enters when any one of its role representations is in the
// corresponding allowed set; Permissions, when declared, must all be held.
type Entry struct {
	Prefix      string
	RoleIDs     []int64
	RoleNames   []string
	LegacyRoles []auth.Category
	Permissions []string
	Fallback    string
}
