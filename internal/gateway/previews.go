package gateway

import (
	"context"
	"net/http"
	"strings"

	"vidgen/internal/codec"
	"vidgen/internal/services"
)

// Preview is a rendered preview frame, usually a data URL.
type Preview struct {
	Image string `json:"preview_image"`
}

// PreviewScene renders a low-cost still of one scene.
func (c *Client) PreviewScene(ctx context.Context, req codec.ScenePreview) (Preview, error) {
	return c.preview(ctx, "preview scene", "/api/v1/previews/scene", req)
}

// PreviewText renders a single text element on a transparent canvas.
func (c *Client) PreviewText(ctx context.Context, el codec.WireTextElement) (Preview, error) {
	return c.preview(ctx, "preview text", "/api/v1/previews/text", el)
}

func (c *Client) preview(ctx context.Context, operation, path string, body any) (Preview, error) {
	if err := c.waitPreview(ctx); err != nil {
		return Preview{}, err
	}
	var out Preview
	if err := c.doJSON(ctx, operation, http.MethodPost, path, body, &out); err != nil {
		return Preview{}, err
	}
	if strings.TrimSpace(out.Image) == "" {
		return Preview{}, services.Wrap(services.ErrTransport, "gateway", operation, "response has no preview image", nil)
	}
	return out, nil
}
