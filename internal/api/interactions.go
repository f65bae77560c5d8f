package api

import (
	"context"
	"net/http"

	"shopfront/internal/domain"
)

// SendInteraction posts one behavioral event. With an empty token the request
// goes out anonymously (beacon-style); the endpoint accepts both. Exactly one
// attempt is made either way.
func (c *Client) SendInteraction(ctx context.Context, token string, event domain.InteractionEvent) error {
	_, err := c.do(ctx, "interaction", http.MethodPost, "/interactions", nil, token, event)
	return err
}
