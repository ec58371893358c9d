// Package api клиент основного REST API popodpiske.
//
// Каждый запрос выполняется от имени сессии из контекста: транспорт подставляет
// её access-токен и cookies, а при ответе 401 один раз обновляет токен через /auth/refresh.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/popodpiske/checkout-gateway/internal/config"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
)

// TokenStore постоянное хранилище токена и cookies сессии.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	Cookies(ctx context.Context) (map[string]string, error)
	SetCookies(ctx context.Context, cookies map[string]string) error
	ClearTokens(ctx context.Context) error
}

// LogoutFunc вызывается при принудительном выходе, когда обновить токен не удалось.
type LogoutFunc func(ctx context.Context)

// Client клиент основного API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	log        *slog.Logger
}

// New создаёт клиент. onLogout может быть nil.
func New(cfg config.API, tokens TokenStore, onLogout LogoutFunc, log *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.APITimeout,
			Transport: &reauthTransport{
				base:     http.DefaultTransport,
				baseURL:  baseURL,
				tokens:   tokens,
				onLogout: onLogout,
				log:      log,
			},
		},
		tokens: tokens,
		log:    log,
	}
}

// do отправляет JSON-запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	const op = "api.do"

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	endpoint := method + " " + path
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, 0, time.Since(started))
		if errors.Is(err, ErrSessionExpired) {
			return fmt.Errorf("%s: %w", op, ErrSessionExpired)
		}
		c.log.Warn("upstream request failed", slog.String("endpoint", endpoint), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(endpoint, resp.StatusCode, time.Since(started))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp.StatusCode, data)
		c.log.Debug("upstream returned error",
			slog.String("endpoint", endpoint),
			slog.Int("status", apiErr.Status),
			slog.String("message", apiErr.Message),
		)
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w: %w", op, endpoint, ErrNetwork, err)
	}
	return nil
}
