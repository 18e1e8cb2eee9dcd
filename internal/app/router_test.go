package app_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vitalcare/vitalcare/internal/app"
	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/gate"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/policy"
	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/internal/view"
	_ "github.com/vitalcare/vitalcare/testing"
)

const routerSecret = "router-test-secret"

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &app.Config{
		AppEnv:                 "test",
		AppRequestTimeout:      5 * time.Second,
		PermissionFetchTimeout: 200 * time.Millisecond,
	}
	templates, err := view.NewEngine()
	require.NoError(t, err)

	reader := auth.NewReader(routerSecret, nil)
	engine := policy.NewEngine(policy.DefaultTable(), policy.DefaultPublicRoutes())
	csrf := shared.NewCSRFManager("csrf-secret", false)

	identity := auth.NewAPIClient("http://127.0.0.1:0")
	authHandler := auth.NewHandler(nil, auth.NewService(identity, reader), templates, csrf, policy.LandingFor, false)

	menuClient := menu.NewClient("http://127.0.0.1:0", cfg.PermissionFetchTimeout, nil)
	checker := gate.NewChecker(engine, menuClient, nil, cfg.PermissionFetchTimeout, nil, nil)
	gateHandler := gate.NewHandler(nil, checker, menuClient, nil, nil)

	return app.NewRouter(app.RouterParams{
		Logger:      app.NewLogger(cfg),
		Config:      cfg,
		Templates:   templates,
		CSRFManager: csrf,
		AuthHandler: authHandler,
		GateHandler: gateHandler,
		Checker:     checker,
		Menus:       menuClient,
		EdgeGate:    &gate.Edge{Reader: reader, Engine: engine},
	})
}

func doctorCookie(t *testing.T) *http.Cookie {
	t.Helper()
	roleID := int64(3)
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		RoleID:   &roleID,
		RoleName: "Medico",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(routerSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: auth.PrimaryCookie, Value: raw}
}

func TestRouterHealthz(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"status":"ok"}`, res.Body.String())
}

func TestRouterRedirectsAnonymousFromProtectedArea(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/medico/agenda", nil))

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/login?error=not-authenticated&from=%2Fmedico%2Fagenda", res.Header().Get("Location"))
}

func TestRouterServesLoginPage(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "<form")
}

func TestRouterRendersDoctorArea(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/medico", nil)
	req.AddCookie(doctorCookie(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Agenda")
}

func TestRouterDeniesDoctorFromAdminArea(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(doctorCookie(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusSeeOther, res.Code)
	require.Equal(t, "/dashboard?error=insufficient-role&from=%2Fadmin", res.Header().Get("Location"))
}

func TestRouterRejectsPostWithoutCSRF(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/login", nil))

	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestRouterAccessDeniedPage(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/acesso-negado?error=missing-permissions&from=%2Ffinanceiro%2Frepasses", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	req.AddCookie(doctorCookie(t))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "/financeiro/repasses")
}
