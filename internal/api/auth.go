package api

import (
	"context"
	"net/http"

	"shopfront/internal/domain"
)

// AuthResponse is the payload returned by login and register.
type AuthResponse struct {
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
}

// RegisterPayload carries the fields for account creation.
type RegisterPayload struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// Login exchanges credentials for an identity and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	payload := map[string]string{"email": email, "password": password}

	raw, err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, "", payload)
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User.ID == 0 {
		return nil, ErrInvalidPayload
	}
	return &resp, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*AuthResponse, error) {
	raw, err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, "", payload)
	if err != nil {
		return nil, err
	}

	var resp AuthResponse
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User.ID == 0 {
		return nil, ErrInvalidPayload
	}
	return &resp, nil
}

// Me revalidates a token against the "who am I" endpoint. Any non-2xx means
// the session is invalid; so does a success body without a user.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	raw, err := c.do(ctx, "me", http.MethodGet, "/auth/me", nil, token, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		User *domain.User `json:"user"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrInvalidPayload
	}
	return resp.User, nil
}
