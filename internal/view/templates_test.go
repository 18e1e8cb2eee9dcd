package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderDeniedPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/acesso-negado.html", TemplateData{
		Title: "Acesso negado",
		Data: map[string]any{
			"Message": DenialMessage("pt-BR", reasonInsufficientRole),
			"From":    "/admin",
			"Landing": "/dashboard",
		},
	})
	require.NoError(t, err)
	require.Contains(t, res.Body.String(), "Seu perfil não tem acesso")
	require.Contains(t, res.Body.String(), "/admin")
}

func TestDenialMessageLocalization(t *testing.T) {
	cases := []struct {
		accept string
		reason string
		want   string
	}{
		{"pt-BR", reasonNotAuthenticated, "Faça login para acessar esta página."},
		{"en-US", reasonNotAuthenticated, "Sign in to access this page."},
		{"en", reasonMissingPermissions, "You are missing the permissions required for this page."},
		{"", reasonAccessDenied, "Acesso negado."},
		{"fr", reasonInsufficientRole, "Seu perfil não tem acesso a esta área."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DenialMessage(tc.accept, tc.reason))
	}
}

func TestDenialMessageUnknownReason(t *testing.T) {
	assert.Equal(t, "Acesso negado.", DenialMessage("pt-BR", "mystery"))
}

func TestNoticeFor(t *testing.T) {
	assert.Empty(t, NoticeFor("", "pt-BR"))
	assert.Equal(t, "Faça login para acessar esta página.", NoticeFor(reasonNotAuthenticated, "pt-BR"))
}
