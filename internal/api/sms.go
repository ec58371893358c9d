package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

// SendCode отправляет одноразовый код на номер.
func (c *Client) SendCode(ctx context.Context, phone string) (*models.MessageResponse, error) {
	const op = "api.SendCode"
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/sms/send", map[string]string{"phone": phone}, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// VerifyCode проверяет код и возвращает токен подтверждения номера.
func (c *Client) VerifyCode(ctx context.Context, phone, code string) (*models.VerifyCodeResponse, error) {
	const op = "api.VerifyCode"
	var resp models.VerifyCodeResponse
	body := map[string]string{"phone": phone, "code": code}
	if err := c.do(ctx, http.MethodPost, "/sms/verify", body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}
