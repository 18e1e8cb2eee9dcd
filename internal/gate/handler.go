package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/menu"
	"github.com/vitalcare/vitalcare/internal/platform/httpx"
	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/internal/sidebar"
)

// Handler exposes the client-gate API consumed by the running front end
// for client-side transitions: the authorization check, the filtered menu,
// the sidebar presentation, and the recent-navigation list.
type Handler struct {
	logger  *slog.Logger
	checker *Checker
	menus   *menu.Client
	history *shared.NavigationHistory
	metrics DecisionRecorder
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, checker *Checker, menus *menu.Client, history *shared.NavigationHistory, metrics DecisionRecorder) *Handler {
	return &Handler{
		logger:  logger,
		checker: checker,
		menus:   menus,
		history: history,
		metrics: metrics,
	}
}

// MountRoutes registers the client-gate API under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/authz/check", h.handleCheck)
	r.Get("/menus/me", h.handleMenu)
	r.Get("/navigation/sidebar", h.handleSidebar)
	r.Get("/navigation/recent", h.handleRecent)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" || !strings.HasPrefix(path, "/") {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "query parameter path must be an absolute route")
		return
	}
	var required []string
	if raw := r.URL.Query().Get("permissions"); raw != "" {
		for _, perm := range strings.Split(raw, ",") {
			if perm = strings.TrimSpace(perm); perm != "" {
				required = append(required, perm)
			}
		}
	}

	principal := auth.PrincipalFromContext(r.Context())
	decision := h.checker.Check(r.Context(), principal, path, required)
	if h.metrics != nil {
		outcome := "allowed"
		if !decision.Allowed {
			outcome = string(decision.Reason)
		}
		h.metrics.ObserveDecision("client", outcome)
	}
	if !decision.Allowed && h.logger != nil {
		h.logger.Info("client gate denied",
			slog.String("path", path),
			slog.String("reason", string(decision.Reason)),
		)
	}
	httpx.JSON(w, http.StatusOK, decision)
}

type menuResponse struct {
	Menu menu.Menu `json:"menu"`
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	fetched := h.menus.FetchOrEmpty(r.Context(), principal)
	if principal.Permissions != nil {
		fetched = menu.FilterByPermissions(fetched, principal.Permissions)
	}
	httpx.JSON(w, http.StatusOK, menuResponse{Menu: fetched})
}

type sidebarResponse struct {
	Presentation sidebar.Presentation `json:"presentation"`
	Menu         menu.Menu            `json:"menu"`
}

func (h *Handler) handleSidebar(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	presentation := sidebar.Dispatch(principal)
	var nav menu.Menu
	if presentation == sidebar.PresentationGeneric {
		nav = h.menus.FetchOrEmpty(r.Context(), principal)
	} else {
		granted := h.checker.GrantedPermissions(r.Context(), principal)
		nav = menu.FilterByPermissions(sidebar.Nav(presentation), granted)
	}
	httpx.JSON(w, http.StatusOK, sidebarResponse{Presentation: presentation, Menu: nav})
}

type recentResponse struct {
	Routes []string `json:"routes"`
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	routes, err := h.history.Recent(r.Context(), principal.ID)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("navigation history read", slog.Any("error", err))
		}
		routes = nil
	}
	httpx.JSON(w, http.StatusOK, recentResponse{Routes: routes})
}
