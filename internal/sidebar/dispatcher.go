// Package sidebar maps a resolved role to one of the fixed navigation
// presentations.
package sidebar

import (
	"github.com/vitalcare/vitalcare/internal/auth"
	"github.com/vitalcare/vitalcare/internal/menu"
)

// Presentation names one of the fixed sidebar layouts. Generic is the
// API-driven layout used when no fixed one applies; it renders whatever
// the menu service returns.
type Presentation string

const (
	PresentationAdmin      Presentation = "admin"
	PresentationMedico     Presentation = "medico"
	PresentationPaciente   Presentation = "paciente"
	PresentationRecepcao   Presentation = "recepcao"
	PresentationFinanceiro Presentation = "financeiro"
	PresentationGeneric    Presentation = "generic"
)

// Dispatch picks the presentation for a principal. Dispatch never fails:
// a principal whose role does not resolve but whose legacy category says
// patient still gets the patient presentation, and anything else falls
// back to the generic API-driven one.
func Dispatch(principal *auth.Principal) Presentation {
	switch principal.Resolve() {
	case auth.RoleAdmin:
		return PresentationAdmin
	case auth.RoleMedico:
		return PresentationMedico
	case auth.RolePaciente:
		return PresentationPaciente
	case auth.RoleRecepcao:
		return PresentationRecepcao
	case auth.RoleFinanceiro:
		return PresentationFinanceiro
	}
	if principal != nil && principal.LegacyRole == auth.CategoryPatient {
		return PresentationPaciente
	}
	return PresentationGeneric
}

// Nav returns the static navigation tree for a fixed presentation. The
// generic presentation has no static tree; its caller fetches the menu
// from the clinic API instead.
func Nav(presentation Presentation) menu.Menu {
	if nav, ok := staticNavs[presentation]; ok {
		return nav
	}
	return menu.Menu{}
}

var staticNavs = map[Presentation]menu.Menu{
	PresentationAdmin: {Groups: []menu.Group{
		{Label: "Administração", Items: []menu.Item{
			{Label: "Visão geral", Route: "/admin", Icon: "gauge"},
			{Label: "Usuários", Route: "/admin/usuarios", Icon: "users"},
			{Label: "Configurações", Route: "/admin/configuracoes", Icon: "settings"},
		}},
		{Label: "Relatórios", Items: []menu.Item{
			{Label: "Atendimentos", Route: "/admin/relatorios/atendimentos", Icon: "chart"},
			{Label: "Faturamento", Route: "/admin/relatorios/faturamento", Icon: "coins", PermissionsRequired: []string{"financeiro.relatorios.ler"}},
		}},
	}},
	PresentationMedico: {Groups: []menu.Group{
		{Label: "Atendimento", Items: []menu.Item{
			{Label: "Agenda", Route: "/medico/agenda", Icon: "calendar"},
			{Label: "Prontuários", Route: "/medico/prontuarios", Icon: "clipboard", PermissionsRequired: []string{"prontuario.ler"}},
			{Label: "Estoque", Route: "/medico/estoque", Icon: "boxes"},
		}},
	}},
	PresentationPaciente: {Groups: []menu.Group{
		{Label: "Minha saúde", Items: []menu.Item{
			{Label: "Consultas", Route: "/paciente/consultas", Icon: "calendar"},
			{Label: "Exames", Route: "/paciente/exames", Icon: "flask"},
			{Label: "Faturas", Route: "/paciente/faturas", Icon: "receipt"},
		}},
	}},
	PresentationRecepcao: {Groups: []menu.Group{
		{Label: "Recepção", Items: []menu.Item{
			{Label: "Agendamentos", Route: "/recepcao/agendamentos", Icon: "calendar"},
			{Label: "Pacientes", Route: "/recepcao/pacientes", Icon: "users"},
		}},
	}},
	PresentationFinanceiro: {Groups: []menu.Group{
		{Label: "Financeiro", Items: []menu.Item{
			{Label: "Faturas", Route: "/financeiro/faturas", Icon: "receipt"},
			{Label: "Repasses", Route: "/financeiro/repasses", Icon: "coins", PermissionsRequired: []string{"financeiro.repasses.ler"}},
		}},
	}},
}
