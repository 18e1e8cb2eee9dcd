package view

import "golang.org/x/text/language"

// Denial reason codes as carried by the `error` query parameter.
const (
	reasonNotAuthenticated   = "not-authenticated"
	reasonInsufficientRole   = "insufficient-role"
	reasonMissingPermissions = "missing-permissions"
	reasonAccessDenied       = "access-denied"
)

var supportedLanguages = []language.Tag{
	language.BrazilianPortuguese, // default
	language.English,
}

var matcher = language.NewMatcher(supportedLanguages)

var denialMessages = map[language.Tag]map[string]string{
	language.BrazilianPortuguese: {
		reasonNotAuthenticated:   "Faça login para acessar esta página.",
		reasonInsufficientRole:   "Seu perfil não tem acesso a esta área.",
		reasonMissingPermissions: "Você não possui as permissões necessárias para esta página.",
		reasonAccessDenied:       "Acesso negado.",
	},
	language.English: {
		reasonNotAuthenticated:   "Sign in to access this page.",
		reasonInsufficientRole:   "Your role does not have access to this area.",
		reasonMissingPermissions: "You are missing the permissions required for this page.",
		reasonAccessDenied:       "Access denied.",
	},
}

// DenialMessage returns the localized human-readable text for a denial
// reason code, matching the Accept-Language header against the supported
// languages. Unknown reasons render as the generic denial.
func DenialMessage(acceptLanguage, reason string) string {
	_, index := language.MatchStrings(matcher, acceptLanguage)
	messages := denialMessages[supportedLanguages[index]]
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return messages[reasonAccessDenied]
}

// NoticeFor localizes an optional `error` query parameter for pages that
// show the denial as an inline notice. Empty reason means no notice.
func NoticeFor(reason, acceptLanguage string) string {
	if reason == "" {
		return ""
	}
	return DenialMessage(acceptLanguage, reason)
}
