package auth

import "strings"

// Role is the normalized role tag every consumer works with. Tokens carry
// up to three representations of who the user is (numeric role id, role
// name, legacy category); Resolve collapses them into one Role so call
// sites never re-derive the fallback chain.
type Role int

const (
	// RoleUnknown means none of the representations resolved.
	RoleUnknown Role = iota
	// RoleAdmin is the administrative staff role.
	RoleAdmin
	// RoleMedico is the physician role.
	RoleMedico
	// RolePaciente is the patient role.
	RolePaciente
	// RoleRecepcao is the front-desk role.
	RoleRecepcao
	// RoleFinanceiro is the billing role.
	RoleFinanceiro
)

// String returns the canonical lowercase tag for logs and metrics labels.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleMedico:
		return "medico"
	case RolePaciente:
		return "paciente"
	case RoleRecepcao:
		return "recepcao"
	case RoleFinanceiro:
		return "financeiro"
	default:
		return "unknown"
	}
}

// Category is the legacy role category carried by tokens minted before the
// role table existed. Values are the old English tags.
type Category string

const (
	CategoryNone      Category = ""
	CategoryAdmin     Category = "admin"
	CategoryDoctor    Category = "doctor"
	CategoryPatient   Category = "patient"
	CategoryReception Category = "reception"
	CategoryFinance   Category = "finance"
)

// Principal is the authenticated actor for a single request or navigation.
// Constructed once by the credential reader and never mutated. At least one
// role representation is populated on an authenticated principal, but none
// is guaranteed, so consumers must go through Resolve rather than read a
// single field.
type Principal struct {
	ID          int64
	RoleID      *int64
	RoleName    string
	LegacyRole  Category
	Permissions []string

	// Token is the verified raw credential, kept so downstream calls to
	// the clinic API can forward it.
	Token string
}

var roleByID = map[int64]Role{
	1: RoleAdmin,
	2: RoleRecepcao,
	3: RoleMedico,
	4: RolePaciente,
	5: RoleFinanceiro,
}

var roleByName = map[string]Role{
	"admin":         RoleAdmin,
	"administrador": RoleAdmin,
	"medico":        RoleMedico,
	"médico":        RoleMedico,
	"paciente":      RolePaciente,
	"recepcao":      RoleRecepcao,
	"recepcionista": RoleRecepcao,
	"financeiro":    RoleFinanceiro,
}

var roleByCategory = map[Category]Role{
	CategoryAdmin:     RoleAdmin,
	CategoryDoctor:    RoleMedico,
	CategoryPatient:   RolePaciente,
	CategoryReception: RoleRecepcao,
	CategoryFinance:   RoleFinanceiro,
}

// Resolve applies the ordered fallback chain: role id first, then role
// name, then the legacy category. Representations that are present but
// unrecognized fall through to the next one.
func (p *Principal) Resolve() Role {
	if p == nil {
		return RoleUnknown
	}
	if p.RoleID != nil {
		if role, ok := roleByID[*p.RoleID]; ok {
			return role
		}
	}
	if name := strings.ToLower(strings.TrimSpace(p.RoleName)); name != "" {
		if role, ok := roleByName[name]; ok {
			return role
		}
	}
	if role, ok := roleByCategory[p.LegacyRole]; ok {
		return role
	}
	return RoleUnknown
}

// HasPermission reports whether the principal's own permission set carries
// the given permission. The set is optional; absence means "not granted".
func (p *Principal) HasPermission(perm string) bool {
	if p == nil {
		return false
	}
	for _, granted := range p.Permissions {
		if strings.EqualFold(granted, perm) {
			return true
		}
	}
	return false
}
