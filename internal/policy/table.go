package policy

import "github.com/vitalcare/vitalcare/internal/auth"

// Well-known routes referenced across the application.
const (
	LoginRoute        = "/login"
	DashboardRoute    = "/dashboard"
	AccessDeniedRoute = "/acesso-negado"
)

// DefaultPublicRoutes lists the paths reachable without a credential:
// the root landing page, the auth flows, the denial page, and every
// API-prefixed path (API handlers authenticate on their own).
func DefaultPublicRoutes() *PublicRoutes {
	return NewPublicRoutes(
		[]string{"/", "/healthz", "/metrics"},
		[]string{
			"/login",
			"/cadastro",
			"/recuperar-senha",
			"/redefinir-senha",
			"/acesso-negado",
			"/static/",
			"/api/",
		},
	)
}

// DefaultTable is the VitalCare route-access table. First matching prefix
// wins, so more specific prefixes come before the area they live under.
// The table is built once at process start; changing it means a deploy.
func DefaultTable() []Entry {
	return []Entry{
		{
			Prefix:      "/admin",
			RoleIDs:     []int64{1},
			RoleNames:   []string{"Admin", "Administrador"},
			LegacyRoles: []auth.Category{auth.CategoryAdmin},
			Fallback:    DashboardRoute,
		},
		{
			Prefix:      "/financeiro/repasses",
			RoleIDs:     []int64{1, 5},
			RoleNames:   []string{"Admin", "Administrador", "Financeiro"},
			LegacyRoles: []auth.Category{auth.CategoryAdmin, auth.CategoryFinance},
			Permissions: []string{"financeiro.repasses.ler"},
			Fallback:    DashboardRoute,
		},
		{
			Prefix:      "/financeiro",
			RoleIDs:     []int64{1, 5},
			RoleNames:   []string{"Admin", "Administrador", "Financeiro"},
			LegacyRoles: []auth.Category{auth.CategoryAdmin, auth.CategoryFinance},
			Fallback:    DashboardRoute,
		},
		{
			Prefix:      "/medico",
			RoleIDs:     []int64{1, 3},
			RoleNames:   []string{"Admin", "Administrador", "Medico", "Médico"},
			LegacyRoles: []auth.Category{auth.CategoryAdmin, auth.CategoryDoctor},
			Fallback:    DashboardRoute,
		},
		{
			Prefix:      "/paciente",
			RoleIDs:     []int64{4},
			RoleNames:   []string{"Paciente"},
			LegacyRoles: []auth.Category{auth.CategoryPatient},
			Fallback:    DashboardRoute,
		},
		{
			Prefix:      "/recepcao",
			RoleIDs:     []int64{1, 2},
			RoleNames:   []string{"Admin", "Administrador", "Recepcao", "Recepcionista"},
			LegacyRoles: []auth.Category{auth.CategoryAdmin, auth.CategoryReception},
			Fallback:    DashboardRoute,
		},
	}
}
