package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrEmailLoginDisabled signals that the hosted auth project has password
// logins turned off; callers fall back to the magic-link flow.
var ErrEmailLoginDisabled = errors.New("email/password login is disabled")

// ErrInvalidCredentials signals a wrong email/password pair.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Session is the token bundle issued by the hosted auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Client talks to the hosted Supabase Auth (GoTrue) REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates an auth client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// PasswordSignIn exchanges email/password for a session.
func (c *Client) PasswordSignIn(ctx context.Context, email, password string) (Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var session Session
	err := c.post(ctx, "/auth/v1/token?grant_type=password", "", payload, &session)
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// SendMagicLink asks the auth service to email a one-time login link.
func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	payload := map[string]any{"email": email, "create_user": false}
	if redirectTo != "" {
		payload["redirect_to"] = redirectTo
	}
	return c.post(ctx, "/auth/v1/otp", "", payload, nil)
}

// SignOut revokes the session behind the given access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.post(ctx, "/auth/v1/logout", accessToken, struct{}{}, nil)
}

func (c *Client) post(ctx context.Context, path, bearer string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("auth: encode request failed: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("auth: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.APIKey)
	if bearer == "" {
		bearer = c.APIKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("auth: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return apiError(resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("auth: decode response failed: %w", err)
		}
	}
	return nil
}

// apiError maps GoTrue error bodies onto the sentinel errors callers branch
// on. GoTrue reports either {"error_description": ...} or {"msg": ...}.
func apiError(status int, raw []byte) error {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	_ = json.Unmarshal(raw, &body)
	msg := body.ErrorDescription
	if msg == "" {
		msg = body.Msg
	}
	if msg == "" {
		msg = body.Error
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "email") && strings.Contains(lower, "disabled"):
		return ErrEmailLoginDisabled
	case strings.Contains(lower, "invalid login credentials"):
		return ErrInvalidCredentials
	case msg != "":
		return fmt.Errorf("auth: request rejected (%d): %s", status, msg)
	default:
		return fmt.Errorf("auth: request rejected (%d)", status)
	}
}
