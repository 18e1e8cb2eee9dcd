package gate_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/gate"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/policy"
	"github.com/vitalcare/vitalcare/internal/shared"
)

func newAPIRouter(t *testing.T, menuPayload string, history *shared.NavigationHistory, principal *auth.Principal) http.Handler {
	t.Helper()
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if menuPayload == "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(menuPayload))
	}))
	t.Cleanup(remote.Close)

	engine := policy.NewEngine(policy.DefaultTable(), policy.DefaultPublicRoutes())
	menus := menu.NewClient(remote.URL, time.Second, nil)
	checker := gate.NewChecker(engine, menus, nil, time.Second, nil, nil)
	handler := gate.NewHandler(nil, checker, menus, history, nil)

	r := chi.NewRouter()
	if principal != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.ContextWithPrincipal(req.Context(), principal)))
			})
		})
	}
	r.Route("/api", handler.MountRoutes)
	return r
}

const doctorMenuPayload = `{"groups":[{"label":"Atendimento","items":[
	{"label":"Agenda","route":"/medico/agenda"},
	{"label":"Prontuários","route":"/medico/prontuarios","permissions_required":["prontuario.ler"]}
]}]}`

func TestHandlerCheckAllowed(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/authz/check?path=/medico/agenda", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var decision policy.Decision
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	require.True(t, decision.Allowed)
}

func TestHandlerCheckWithPermissions(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet,
		"/api/authz/check?path=/medico/prontuarios&permissions=prontuario.ler", nil))

	var decision policy.Decision
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	require.True(t, decision.Allowed)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet,
		"/api/authz/check?path=/medico/prontuarios&permissions=prontuario.assinar", nil))
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	require.False(t, decision.Allowed)
	require.Equal(t, policy.ReasonMissingPermissions, decision.Reason)
}

func TestHandlerCheckAnonymous(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, nil)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/authz/check?path=/medico/agenda", nil))
	require.Equal(t, http.StatusOK, res.Code, "anonymous checks resolve to a decision, not an error")

	var decision policy.Decision
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &decision))
	require.False(t, decision.Allowed)
	require.Equal(t, policy.ReasonNotAuthenticated, decision.Reason)
}

func TestHandlerCheckRejectsBadPath(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/authz/check?path=medico", nil))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestHandlerMenuDegradesToEmpty(t *testing.T) {
	router := newAPIRouter(t, "", nil, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/menus/me", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Menu menu.Menu `json:"menu"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.True(t, payload.Menu.Empty())
}

func TestHandlerSidebarFixedPresentation(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/navigation/sidebar", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Presentation string    `json:"presentation"`
		Menu         menu.Menu `json:"menu"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, "medico", payload.Presentation)
	require.False(t, payload.Menu.Empty())
}

func TestHandlerRecentNavigation(t *testing.T) {
	mr := miniredis.RunT(t)
	history := shared.NewNavigationHistory(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 10, time.Hour)
	require.NoError(t, history.Record(t.Context(), 42, "/medico/agenda"))
	require.NoError(t, history.Record(t.Context(), 42, "/medico/estoque"))

	router := newAPIRouter(t, doctorMenuPayload, history, doctorPrincipal())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/navigation/recent", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Equal(t, []string{"/medico/estoque", "/medico/agenda"}, payload.Routes)
}

func TestHandlerRequiresPrincipal(t *testing.T) {
	router := newAPIRouter(t, doctorMenuPayload, nil, nil)

	for _, path := range []string{"/api/menus/me", "/api/navigation/sidebar", "/api/navigation/recent"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, res.Code, path)
	}
}
