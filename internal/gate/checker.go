package gate

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/policy"
)

// FetchRecorder counts permission fetch outcomes.
type FetchRecorder interface {
	ObservePermissionFetch(outcome string)
}

// Checker is the client gate. It mirrors the edge gate's policy decision
// for client-driven navigation and adds the asynchronous fine-grained
// permission check the edge layer does not have.
type Checker struct {
	engine  *policy.Engine
	fetcher menu.Fetcher
	cache   *menu.PermissionCache
	timeout time.Duration
	logger  *slog.Logger
	metrics FetchRecorder

	group singleflight.Group
}

// NewChecker constructs a Checker. timeout bounds the permission fetch;
// an exceeded timeout denies access, same as any other fetch failure.
func NewChecker(engine *policy.Engine, fetcher menu.Fetcher, cache *menu.PermissionCache, timeout time.Duration, logger *slog.Logger, metrics FetchRecorder) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		engine:  engine,
		fetcher: fetcher,
		cache:   cache,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Check evaluates a client-side navigation. Phase one re-runs the policy
// engine; phase two, entered only when the caller declared required
// permissions, fetches the principal's permission set and requires full
// membership. Every failure path in phase two denies: a permission that
// cannot be proven is a permission the principal does not have.
//
// If ctx is cancelled while the fetch is in flight the settled result is
// discarded rather than applied: a decision computed for an abandoned
// navigation must not leak into the next one.
func (c *Checker) Check(ctx context.Context, principal *auth.Principal, path string, required []string) policy.Decision {
	decision := c.engine.Decide(path, principal)
	if !decision.Allowed || len(required) == 0 {
		return decision
	}
	if principal == nil {
		// Public path with declared permission requirements: nothing to
		// prove membership against.
		return policy.Decision{Reason: policy.ReasonNotAuthenticated, Redirect: policy.LoginRoute}
	}

	granted, ok := c.grantedPermissions(ctx, principal)
	if ctx.Err() != nil {
		return policy.Decision{Reason: policy.ReasonAccessDenied, Redirect: policy.AccessDeniedRoute}
	}
	if !ok {
		return policy.Decision{Reason: policy.ReasonMissingPermissions, Redirect: policy.AccessDeniedRoute}
	}

	grantedSet := make(map[string]struct{}, len(granted))
	for _, perm := range granted {
		grantedSet[perm] = struct{}{}
	}
	for _, perm := range required {
		if _, found := grantedSet[perm]; !found {
			return policy.Decision{Reason: policy.ReasonMissingPermissions, Redirect: policy.AccessDeniedRoute}
		}
	}
	return policy.Decision{Allowed: true}
}

// GrantedPermissions exposes the principal's effective permission set for
// menu rendering. Failure surfaces as an empty set.
func (c *Checker) GrantedPermissions(ctx context.Context, principal *auth.Principal) []string {
	granted, ok := c.grantedPermissions(ctx, principal)
	if !ok {
		return nil
	}
	return granted
}

func (c *Checker) grantedPermissions(ctx context.Context, principal *auth.Principal) ([]string, bool) {
	if cached, hit := c.cache.Get(ctx, principal.ID); hit {
		c.observeFetch("hit")
		return cached, true
	}

	// Concurrent checks for the same principal share one fetch. The
	// fetch runs on a context detached from this request so a caller
	// abandoning its navigation cannot fail the other waiters; staleness
	// for this caller is handled by the ctx.Err() guard in Check.
	result, err, _ := c.group.Do(strconv.FormatInt(principal.ID, 10), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		fetched, err := c.fetcher.Fetch(fetchCtx, principal)
		if err != nil {
			return nil, err
		}
		perms := menu.Flatten(fetched)
		c.cache.Set(fetchCtx, principal.ID, perms)
		return perms, nil
	})
	if err != nil {
		c.observeFetch("error")
		if c.logger != nil {
			c.logger.Warn("permission fetch failed", slog.Int64("principal", principal.ID), slog.Any("error", err))
		}
		return nil, false
	}
	c.observeFetch("fetched")
	perms, _ := result.([]string)
	return perms, true
}

func (c *Checker) observeFetch(outcome string) {
	if c.metrics != nil {
		c.metrics.ObservePermissionFetch(outcome)
	}
}
