package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidCredentials indicates a failed login or an unusable token.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrInvalidResetToken indicates an expired or unknown password reset token.
var ErrInvalidResetToken = errors.New("auth: invalid reset token")

// IdentityClient talks to the clinic API, which owns the user store and
// mints bearer tokens. This process never sees a password hash.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// APIClient implements IdentityClient over the clinic HTTP API.
type APIClient struct {
	base   string
	client *http.Client
}

// NewAPIClient constructs an APIClient for the given base URL.
func NewAPIClient(base string) *APIClient {
	return &APIClient{
		base:   base,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a signed bearer token.
func (c *APIClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth: login request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return "", ErrInvalidCredentials
	case res.StatusCode != http.StatusOK:
		return "", fmt.Errorf("auth: login status %d", res.StatusCode)
	}

	var payload loginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("auth: decode login response: %w", err)
	}
	if payload.Token == "" {
		return "", ErrInvalidCredentials
	}
	return payload.Token, nil
}

type resetRequest struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token,omitempty"`

	Password string `json:"password,omitempty"`
}

// RequestPasswordReset asks the clinic API to email a reset link. The API
// answers 200 whether or not the address exists, so the only errors here
// are transport failures.
func (c *APIClient) RequestPasswordReset(ctx context.Context, email string) error {
	res, err := c.postJSON(ctx, "/api/auth/recover", resetRequest{Email: email})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
		return fmt.Errorf("auth: recover status %d", res.StatusCode)
	}
	return nil
}

// ResetPassword completes a reset started by RequestPasswordReset.
func (c *APIClient) ResetPassword(ctx context.Context, token, password string) error {
	res, err := c.postJSON(ctx, "/api/auth/reset", resetRequest{Token: token, Password: password})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden, res.StatusCode == http.StatusUnprocessableEntity:
		return ErrInvalidResetToken
	default:
		return fmt.Errorf("auth: reset status %d", res.StatusCode)
	}
}

func (c *APIClient) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: request %s: %w", path, err)
	}
	return res, nil
}

var _ IdentityClient = (*APIClient)(nil)

// Service wraps authentication flow rules.
type Service struct {
	client IdentityClient
	reader *Reader
}

// NewService constructs a Service.
func NewService(client IdentityClient, reader *Reader) *Service {
	return &Service{client: client, reader: reader}
}

// Authenticate exchanges credentials for a token and verifies that the
// token the API issued actually parses under our signing secret. A token
// this process cannot verify is useless to the caller, so it is rejected
// here rather than on the next request.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *Principal, error) {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	principal := s.reader.Parse(token)
	if principal == nil {
		return "", nil, ErrInvalidCredentials
	}
	return token, principal, nil
}

// RequestPasswordReset forwards a recovery request to the clinic API.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.client.RequestPasswordReset(ctx, email)
}

// ResetPassword forwards a reset completion to the clinic API.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	return s.client.ResetPassword(ctx, token, password)
}
