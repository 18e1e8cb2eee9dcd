package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "reader-test-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doctorClaims() *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		RoleID:   int64ptr(3),
		RoleName: "Medico",
	}
}

func TestReaderCookiePriority(t *testing.T) {
	reader := NewReader(testSecret, nil)

	primary := signToken(t, testSecret, doctorClaims())
	legacy := signToken(t, testSecret, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "7"},
		Role:             string(CategoryPatient),
	})

	req := httptest.NewRequest(http.MethodGet, "/medico", nil)
	req.AddCookie(&http.Cookie{Name: LegacyCookie, Value: legacy})
	req.AddCookie(&http.Cookie{Name: PrimaryCookie, Value: primary})

	principal := reader.FromRequest(req)
	require.NotNil(t, principal)
	require.EqualValues(t, 42, principal.ID)
	require.Equal(t, RoleMedico, principal.Resolve())
}

func TestReaderLegacyCookieAndHeader(t *testing.T) {
	reader := NewReader(testSecret, nil)
	token := signToken(t, testSecret, doctorClaims())

	byLegacy := httptest.NewRequest(http.MethodGet, "/medico", nil)
	byLegacy.AddCookie(&http.Cookie{Name: LegacyCookie, Value: token})
	require.NotNil(t, reader.FromRequest(byLegacy))

	byHeader := httptest.NewRequest(http.MethodGet, "/medico", nil)
	byHeader.Header.Set("Authorization", "Bearer "+token)
	require.NotNil(t, reader.FromRequest(byHeader))
}

func TestReaderRejectsBadCredentials(t *testing.T) {
	reader := NewReader(testSecret, nil)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"wrong signature", signToken(t, "other-secret", doctorClaims())},
		{"expired", signToken(t, testSecret, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			RoleID: int64ptr(3),
		})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/medico", nil)
			if tc.token != "" {
				req.AddCookie(&http.Cookie{Name: PrimaryCookie, Value: tc.token})
			}
			require.Nil(t, reader.FromRequest(req), "bad credential must read as unauthenticated")
		})
	}
}

func TestReaderRejectsUnexpectedAlgorithm(t *testing.T) {
	reader := NewReader(testSecret, nil)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, doctorClaims())
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/medico", nil)
	req.AddCookie(&http.Cookie{Name: PrimaryCookie, Value: raw})
	require.Nil(t, reader.FromRequest(req))
}

func TestClaimsPrincipal(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "15"},
		RoleName:         "Paciente",
		Permissions:      []string{"agenda.ler"},
	}
	principal := claims.Principal()
	require.EqualValues(t, 15, principal.ID)
	require.Equal(t, RolePaciente, principal.Resolve())
	require.True(t, principal.HasPermission("agenda.ler"))

	nonNumeric := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	require.EqualValues(t, 0, nonNumeric.Principal().ID)
}
