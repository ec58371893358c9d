package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/popodpiske/checkout-gateway/internal/lib/jwt"
	"github.com/popodpiske/checkout-gateway/internal/models"
)

// Login входит по телефону и паролю и сохраняет access-токен сессии.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	const op = "api.Login"
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.tokens.SetAccessToken(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Register создаёт пользователя с паролем и сохраняет access-токен сессии.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	const op = "api.Register"
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.tokens.SetAccessToken(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// CheckPhone сообщает, зарегистрирован ли номер.
func (c *Client) CheckPhone(ctx context.Context, phone string) (bool, error) {
	const op = "api.CheckPhone"
	var resp struct {
		Exists bool `json:"exists"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/check-phone", map[string]string{"phone": phone}, &resp); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return resp.Exists, nil
}

// ResetPassword задаёт новый пароль по токену, полученному после проверки SMS.
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	const op = "api.ResetPassword"
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/reset-password", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Logout удаляет токен и cookies сессии. Основной API не вызывается.
func (c *Client) Logout(ctx context.Context) error {
	const op = "api.Logout"
	if err := c.tokens.ClearTokens(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HasToken сообщает, есть ли у сессии access-токен.
func (c *Client) HasToken(ctx context.Context) (bool, error) {
	const op = "api.HasToken"
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return token != "", nil
}

// TokenInfo разбирает access-токен сессии без проверки подписи. Без токена возвращает nil.
func (c *Client) TokenInfo(ctx context.Context) (*jwt.Claims, error) {
	const op = "api.TokenInfo"
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		return nil, nil
	}
	claims, err := jwt.Inspect(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}
