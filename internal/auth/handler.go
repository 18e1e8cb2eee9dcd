package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vitalcare/vitalcare/internal/shared"
	"github.com/vitalcare/vitalcare/internal/view"
)

// LandingResolver maps an authenticated principal to its home route.
// Satisfied by policy.LandingFor.
type LandingResolver func(*Principal) string

// Handler wires HTTP endpoints for the authentication flow.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
	landingFor  LandingResolver
	secure      bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, landingFor LandingResolver, secure bool) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
		landingFor:  landingFor,
		secure:      secure,
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/recuperar-senha", h.showRecover)
	r.Post("/recuperar-senha", h.handleRecover)
	r.Get("/redefinir-senha", h.showReset)
	r.Post("/redefinir-senha", h.handleReset)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
	From   string
	Notice string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	csrfToken := h.csrfManager.EnsureToken(w, r)
	data := loginPageData{
		From:   safeReturnPath(r.URL.Query().Get("from")),
		Notice: view.NoticeFor(r.URL.Query().Get("error"), r.Header.Get("Accept-Language")),
	}
	h.renderLogin(w, r, http.StatusOK, csrfToken, data)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	csrfToken := h.csrfManager.EnsureToken(w, r)

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	from := safeReturnPath(r.PostFormValue("from"))
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				formErrors[fieldErr.Field()] = "Campo inválido"
			}
		}
	}

	if len(formErrors) == 0 {
		token, principal, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
		if err != nil {
			if !errors.Is(err, ErrInvalidCredentials) && h.logger != nil {
				h.logger.Error("authenticate", slog.Any("error", err))
			}
			formErrors["general"] = "E-mail ou senha inválidos"
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     PrimaryCookie,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.secure,
				SameSite: http.SameSiteLaxMode,
			})
			target := from
			if target == "" && h.landingFor != nil {
				target = h.landingFor(principal)
			}
			if target == "" {
				target = "/"
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, r, http.StatusBadRequest, csrfToken, loginPageData{Form: form, Errors: formErrors, From: from})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{PrimaryCookie, LegacyCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, csrfToken string, data loginPageData) {
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	viewData := view.TemplateData{
		Title:       "Entrar",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		if h.logger != nil {
			h.logger.Error("render login", slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type recoverPageData struct {
	Notice string
	Error  string
	Token  string
}

func (h *Handler) showRecover(w http.ResponseWriter, r *http.Request) {
	csrfToken := h.csrfManager.EnsureToken(w, r)
	h.renderPage(w, r, http.StatusOK, "pages/recuperar-senha.html", "Recuperar senha", csrfToken, recoverPageData{})
}

func (h *Handler) handleRecover(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	csrfToken := h.csrfManager.EnsureToken(w, r)

	email := r.PostFormValue("email")
	if err := h.validator.Var(email, "required,email"); err != nil {
		h.renderPage(w, r, http.StatusBadRequest, "pages/recuperar-senha.html", "Recuperar senha", csrfToken,
			recoverPageData{Error: "Informe um e-mail válido"})
		return
	}
	if err := h.service.RequestPasswordReset(r.Context(), email); err != nil {
		if h.logger != nil {
			h.logger.Error("request password reset", slog.Any("error", err))
		}
		h.renderPage(w, r, http.StatusBadGateway, "pages/recuperar-senha.html", "Recuperar senha", csrfToken,
			recoverPageData{Error: "Não foi possível enviar o e-mail agora. Tente novamente."})
		return
	}
	// Same response whether or not the address exists.
	h.renderPage(w, r, http.StatusOK, "pages/recuperar-senha.html", "Recuperar senha", csrfToken,
		recoverPageData{Notice: "Se o e-mail estiver cadastrado, enviaremos as instruções de recuperação."})
}

func (h *Handler) showReset(w http.ResponseWriter, r *http.Request) {
	csrfToken := h.csrfManager.EnsureToken(w, r)
	h.renderPage(w, r, http.StatusOK, "pages/redefinir-senha.html", "Redefinir senha", csrfToken,
		recoverPageData{Token: r.URL.Query().Get("token")})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	csrfToken := h.csrfManager.EnsureToken(w, r)

	token := r.PostFormValue("token")
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("password_confirmation")

	data := recoverPageData{Token: token}
	switch {
	case token == "":
		data.Error = "Link de redefinição inválido"
	case h.validator.Var(password, "required,min=8") != nil:
		data.Error = "A senha deve ter ao menos 8 caracteres"
	case password != confirmation:
		data.Error = "As senhas não conferem"
	}
	if data.Error != "" {
		h.renderPage(w, r, http.StatusBadRequest, "pages/redefinir-senha.html", "Redefinir senha", csrfToken, data)
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			data.Error = "Link de redefinição expirado ou inválido"
			h.renderPage(w, r, http.StatusBadRequest, "pages/redefinir-senha.html", "Redefinir senha", csrfToken, data)
			return
		}
		if h.logger != nil {
			h.logger.Error("reset password", slog.Any("error", err))
		}
		data.Error = "Não foi possível redefinir a senha agora. Tente novamente."
		h.renderPage(w, r, http.StatusBadGateway, "pages/redefinir-senha.html", "Redefinir senha", csrfToken, data)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, template, title, csrfToken string, data any) {
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		if h.logger != nil {
			h.logger.Error("render page", slog.String("template", template), slog.Any("error", err))
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// safeReturnPath keeps return-to redirects inside the application: only
// absolute paths, never protocol-relative or external URLs.
func safeReturnPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}
