package gateway

import (
	"context"
	"net/http"
)

// Font is one entry of the service's font catalog.
type Font struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}

// Effect is an animation or transition the service can render.
type Effect struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Client) ListFonts(ctx context.Context) ([]Font, error) {
	var out struct {
		Fonts []Font `json:"fonts"`
	}
	if err := c.doJSON(ctx, "list fonts", http.MethodGet, "/api/v1/utils/list_fonts", nil, &out); err != nil {
		return nil, err
	}
	return out.Fonts, nil
}

func (c *Client) ListAnimations(ctx context.Context) ([]Effect, error) {
	var out struct {
		Animations []Effect `json:"animations"`
	}
	if err := c.doJSON(ctx, "list animations", http.MethodGet, "/api/v1/utils/list_animations", nil, &out); err != nil {
		return nil, err
	}
	return out.Animations, nil
}

func (c *Client) ListTransitions(ctx context.Context) ([]Effect, error) {
	var out struct {
		Transitions []Effect `json:"transitions"`
	}
	if err := c.doJSON(ctx, "list transitions", http.MethodGet, "/api/v1/utils/list_transitions", nil, &out); err != nil {
		return nil, err
	}
	return out.Transitions, nil
}
