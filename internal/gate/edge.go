// Package gate holds the two authorization boundaries: the edge gate that
// runs before any page is produced, and the client gate that re-checks
// client-driven navigation with permission-level granularity. Both consume
// the same policy engine.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/policy"
	"github.com/vitalcare/vitalcare/internal/shared"
)

// DecisionRecorder counts decisions for observability.
type DecisionRecorder interface {
	ObserveDecision(boundary, outcome string)
}

// Edge is the perimeter gate. It runs as middleware on every inbound
// request, synchronously and without I/O beyond reading the request:
// pass-through on allow, redirect on deny, nothing else.
type Edge struct {
	Reader  *auth.Reader
	Engine  *policy.Engine
	Logger  *slog.Logger
	Metrics DecisionRecorder
	History *shared.NavigationHistory
}

// Handler wires the edge gate around next.
func (e Edge) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		principal := e.Reader.FromRequest(r)
		if principal != nil {
			r = r.WithContext(auth.ContextWithPrincipal(r.Context(), principal))
		}

		decision := e.Engine.Decide(path, principal)
		e.observe(decision)
		if !decision.Allowed {
			if e.Logger != nil {
				e.Logger.Info("edge gate denied",
					slog.String("decision_id", uuid.NewString()),
					slog.String("path", path),
					slog.String("reason", string(decision.Reason)),
				)
			}
			http.Redirect(w, r, decision.RedirectURL(path), http.StatusSeeOther)
			return
		}

		e.recordHistory(principal, path)
		next.ServeHTTP(w, r)
	})
}

// recordHistory notes an allowed page navigation. Best-effort and off the
// request path: the edge gate itself must never block on the history
// store.
func (e Edge) recordHistory(principal *auth.Principal, path string) {
	if e.History == nil || principal == nil || principal.ID == 0 {
		return
	}
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/static/") {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.History.Record(ctx, principal.ID, path); err != nil && e.Logger != nil {
			e.Logger.Warn("record navigation", slog.Any("error", err))
		}
	}()
}

func (e Edge) observe(decision policy.Decision) {
	if e.Metrics == nil {
		return
	}
	outcome := "allowed"
	if !decision.Allowed {
		outcome = string(decision.Reason)
	}
	e.Metrics.ObserveDecision("edge", outcome)
}
