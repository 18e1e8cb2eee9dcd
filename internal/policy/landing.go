package policy

import "github.com/vitalcare/vitalcare/internal/auth"

// LandingFor maps the principal's resolved role to its home route. Pure
// function of the same three-way role fallback the engine uses; principals
// with no resolvable role land on the generic dashboard.
func LandingFor(principal *auth.Principal) string {
	switch principal.Resolve() {
	case auth.RoleAdmin:
		return "/admin"
	case auth.RoleMedico:
		return "/medico"
	case auth.RolePaciente:
		return "/paciente"
	case auth.RoleRecepcao:
		return "/recepcao"
	case auth.RoleFinanceiro:
		return "/financeiro"
	default:
		return DashboardRoute
	}
}
