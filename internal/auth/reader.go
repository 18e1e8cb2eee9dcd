package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// PrimaryCookie is the cookie the login flow sets today.
	PrimaryCookie = "vitalcare_token"
	// LegacyCookie is the cookie name used before the rebrand. Still
	// accepted so long-lived sessions survive the cutover.
	LegacyCookie = "token"
)

// Reader extracts and verifies the bearer credential on a request. Every
// failure path collapses to an unauthenticated principal: a token that
// cannot be verified is treated exactly like no token at all.
type Reader struct {
	secret []byte
	logger *slog.Logger
}

// NewReader constructs a Reader verifying tokens with the given HMAC secret.
func NewReader(secret string, logger *slog.Logger) *Reader {
	return &Reader{secret: []byte(secret), logger: logger}
}

// FromRequest returns the verified principal on the request, or nil when no
// usable credential is present. Sources are tried in a fixed priority
// order: primary cookie, legacy cookie, Authorization header.
func (rd *Reader) FromRequest(r *http.Request) *Principal {
	raw := rd.rawToken(r)
	if raw == "" {
		return nil
	}
	return rd.Parse(raw)
}

// Parse verifies a raw compact token and returns its principal, or nil.
func (rd *Reader) Parse(raw string) *Principal {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, rd.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if rd.logger != nil {
			rd.logger.Warn("credential rejected", slog.Any("error", err))
		}
		return nil
	}
	if !token.Valid {
		return nil
	}
	principal := claims.Principal()
	principal.Token = raw
	return principal
}

func (rd *Reader) keyFunc(token *jwt.Token) (any, error) {
	return rd.secret, nil
}

func (rd *Reader) rawToken(r *http.Request) string {
	if cookie, err := r.Cookie(PrimaryCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if cookie, err := r.Cookie(LegacyCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
