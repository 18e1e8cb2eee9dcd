package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/gate"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/observability"
	"github.com/vitalcare/vitalcare/internal/policy"
	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/internal/sidebar"
	"github.com/vitalcare/vitalcare/internal/view"
	"github.com/vitalcare/vitalcare/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	Templates   *view.Engine
	CSRFManager *shared.CSRFManager
	AuthHandler *auth.Handler
	GateHandler *gate.Handler
	Checker     *gate.Checker
	Menus       *menu.Client
	EdgeGate    *gate.Edge
	Metrics     *observability.Metrics
}

// NewRouter constructs the chi.Router with VitalCare defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		CSRFManager: params.CSRFManager,
		Metrics:     params.Metrics,
		EdgeGate:    params.EdgeGate,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		principal := auth.PrincipalFromContext(r.Context())
		if principal != nil {
			http.Redirect(w, r, policy.LandingFor(principal), http.StatusSeeOther)
			return
		}
		csrfToken := params.CSRFManager.EnsureToken(w, r)
		data := view.TemplateData{
			Title:     "VitalCare",
			CSRFToken: csrfToken,
		}
		if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get(policy.AccessDeniedRoute, func(w http.ResponseWriter, r *http.Request) {
		principal := auth.PrincipalFromContext(r.Context())
		landing := policy.LoginRoute
		if principal != nil {
			landing = policy.LandingFor(principal)
		}
		reason := r.URL.Query().Get("error")
		if reason == "" {
			reason = string(policy.ReasonAccessDenied)
		}
		data := view.TemplateData{
			Title:       "Acesso negado",
			CurrentPath: r.URL.Path,
			Data: map[string]any{
				"Message": view.DenialMessage(r.Header.Get("Accept-Language"), reason),
				"From":    r.URL.Query().Get("from"),
				"Landing": landing,
			},
		}
		if err := params.Templates.Render(w, "pages/acesso-negado.html", data); err != nil {
			params.Logger.Error("render access denied", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	params.AuthHandler.MountRoutes(r)

	r.Get("/cadastro", func(w http.ResponseWriter, r *http.Request) {
		data := view.TemplateData{
			Title:       "Cadastro",
			CSRFToken:   params.CSRFManager.EnsureToken(w, r),
			CurrentPath: r.URL.Path,
		}
		if err := params.Templates.Render(w, "pages/cadastro.html", data); err != nil {
			params.Logger.Error("render cadastro", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	areaPage := dashboardPage(params)
	r.Get(policy.DashboardRoute, areaPage("Painel"))
	r.Get("/admin", areaPage("Administração"))
	r.Get("/admin/*", areaPage("Administração"))
	r.Get("/medico", areaPage("Área médica"))
	r.Get("/medico/*", areaPage("Área médica"))
	r.Get("/paciente", areaPage("Área do paciente"))
	r.Get("/paciente/*", areaPage("Área do paciente"))
	r.Get("/recepcao", areaPage("Recepção"))
	r.Get("/recepcao/*", areaPage("Recepção"))
	r.Get("/financeiro", areaPage("Financeiro"))
	r.Get("/financeiro/*", areaPage("Financeiro"))

	r.Route("/api", params.GateHandler.MountRoutes)

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// dashboardPage builds a handler that renders a role-area page with the
// sidebar resolved for the authenticated principal. The edge gate has
// already authorized the request, so a missing principal only happens on
// routes the policy leaves open.
func dashboardPage(params RouterParams) func(title string) http.HandlerFunc {
	return func(title string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := auth.PrincipalFromContext(ctx)
			if principal == nil {
				http.Redirect(w, r, policy.LoginRoute, http.StatusSeeOther)
				return
			}

			presentation := sidebar.Dispatch(principal)
			var nav menu.Menu
			if presentation == sidebar.PresentationGeneric {
				nav = params.Menus.FetchOrEmpty(ctx, principal)
			} else {
				granted := params.Checker.GrantedPermissions(ctx, principal)
				nav = menu.FilterByPermissions(sidebar.Nav(presentation), granted)
			}

			data := view.TemplateData{
				Title:       title,
				CurrentPath: r.URL.Path,
				Role:        principal.Resolve().String(),
				Data: map[string]any{
					"Presentation": string(presentation),
					"Menu":         nav,
				},
			}
			if err := params.Templates.Render(w, "pages/dashboard.html", data); err != nil {
				params.Logger.Error("render dashboard", slog.Any("error", err), slog.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
