package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the claim set embedded in VitalCare bearer tokens. Older
// tokens carry only the legacy "role" category; newer ones carry role_id
// and role_name. None of the three is mandatory on the wire.
type Claims struct {
	jwt.RegisteredClaims
	RoleID      *int64   `json:"role_id,omitempty"`
	RoleName    string   `json:"role_name,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Principal converts the claim set into the immutable per-request actor.
func (c *Claims) Principal() *Principal {
	if c == nil {
		return nil
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		id = 0
	}
	return &Principal{
		ID:          id,
		RoleID:      c.RoleID,
		RoleName:    c.RoleName,
		LegacyRole:  Category(c.Role),
		Permissions: c.Permissions,
	}
}
