package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

// ValidateLink возвращает курс и допустимые сроки по UUID платёжной ссылки.
func (c *Client) ValidateLink(ctx context.Context, uuid string) (*models.Link, error) {
	const op = "api.ValidateLink"
	var link models.Link
	if err := c.do(ctx, http.MethodGet, "/links/"+url.PathEscape(uuid), nil, &link); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &link, nil
}
