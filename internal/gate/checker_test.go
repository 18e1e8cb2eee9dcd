package gate_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/gate"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/policy"
)

type stubFetcher struct {
	menu  menu.Menu
	err   error
	calls atomic.Int32
}

func (s *stubFetcher) Fetch(ctx context.Context, principal *auth.Principal) (menu.Menu, error) {
	s.calls.Add(1)
	if s.err != nil {
		return menu.Menu{}, s.err
	}
	return s.menu, nil
}

func permissionMenu(perms ...string) menu.Menu {
	items := make([]menu.Item, 0, len(perms))
	for _, perm := range perms {
		items = append(items, menu.Item{Label: perm, Route: "/x", PermissionsRequired: []string{perm}})
	}
	return menu.Menu{Groups: []menu.Group{{Label: "Permissões", Items: items}}}
}

func doctorPrincipal() *auth.Principal {
	return &auth.Principal{ID: 42, RoleID: int64ptr(3), RoleName: "Medico", Token: "tok"}
}

func newChecker(fetcher menu.Fetcher, cache *menu.PermissionCache) *gate.Checker {
	engine := policy.NewEngine(policy.DefaultTable(), policy.DefaultPublicRoutes())
	return gate.NewChecker(engine, fetcher, cache, time.Second, nil, nil)
}

func TestCheckerPhaseOneDenial(t *testing.T) {
	fetcher := &stubFetcher{menu: permissionMenu("prontuario.ler")}
	checker := newChecker(fetcher, nil)

	decision := checker.Check(context.Background(), doctorPrincipal(), "/admin", []string{"prontuario.ler"})
	require.False(t, decision.Allowed)
	require.Equal(t, policy.ReasonInsufficientRole, decision.Reason)
	require.EqualValues(t, 0, fetcher.calls.Load(), "phase two must not run after a phase-one denial")
}

func TestCheckerNoDeclaredPermissionsSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{}
	checker := newChecker(fetcher, nil)

	decision := checker.Check(context.Background(), doctorPrincipal(), "/medico/agenda", nil)
	require.True(t, decision.Allowed)
	require.EqualValues(t, 0, fetcher.calls.Load())
}

func TestCheckerPermissionMembership(t *testing.T) {
	fetcher := &stubFetcher{menu: permissionMenu("prontuario.ler", "agenda.ler")}
	checker := newChecker(fetcher, nil)

	allowed := checker.Check(context.Background(), doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler"})
	require.True(t, allowed.Allowed)

	denied := checker.Check(context.Background(), doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler", "prontuario.editar"})
	require.False(t, denied.Allowed)
	require.Equal(t, policy.ReasonMissingPermissions, denied.Reason)
	require.Equal(t, policy.AccessDeniedRoute, denied.Redirect)
}

func TestCheckerFailsClosedOnFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	checker := newChecker(fetcher, nil)

	decision := checker.Check(context.Background(), doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler"})
	require.False(t, decision.Allowed, "a fetch failure must never allow")
	require.Equal(t, policy.ReasonMissingPermissions, decision.Reason)
}

func TestCheckerDiscardsStaleResult(t *testing.T) {
	fetcher := &stubFetcher{menu: permissionMenu("prontuario.ler")}
	checker := newChecker(fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decision := checker.Check(ctx, doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler"})
	require.False(t, decision.Allowed, "a result settled after cancellation must be discarded")
	require.Equal(t, policy.ReasonAccessDenied, decision.Reason)
}

func TestCheckerUsesPermissionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := menu.NewPermissionCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	fetcher := &stubFetcher{menu: permissionMenu("prontuario.ler")}
	checker := newChecker(fetcher, cache)
	ctx := context.Background()

	first := checker.Check(ctx, doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler"})
	require.True(t, first.Allowed)
	second := checker.Check(ctx, doctorPrincipal(), "/medico/prontuarios", []string{"prontuario.ler"})
	require.True(t, second.Allowed)

	require.EqualValues(t, 1, fetcher.calls.Load(), "second check must be served from cache")
}

func TestCheckerAnonymousWithDeclaredPermissions(t *testing.T) {
	fetcher := &stubFetcher{menu: permissionMenu("agenda.ler")}
	checker := newChecker(fetcher, nil)

	// The path is public, so phase one allows, but declared permissions
	// cannot be proven without a principal.
	decision := checker.Check(context.Background(), nil, "/api/relatorios", []string{"agenda.ler"})
	require.False(t, decision.Allowed)
	require.Equal(t, policy.ReasonNotAuthenticated, decision.Reason)
	require.EqualValues(t, 0, fetcher.calls.Load())
}

func TestCheckerGrantedPermissions(t *testing.T) {
	fetcher := &stubFetcher{menu: permissionMenu("a", "b")}
	checker := newChecker(fetcher, nil)

	granted := checker.GrantedPermissions(context.Background(), doctorPrincipal())
	require.Equal(t, []string{"a", "b"}, granted)

	failing := newChecker(&stubFetcher{err: errors.New("boom")}, nil)
	require.Nil(t, failing.GrantedPermissions(context.Background(), doctorPrincipal()))
}
