package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const refreshPath = "/auth/refresh"

// reauthTransport подставляет токен и cookies сессии и обновляет токен при 401.
//
// На один исходный запрос приходится не больше одного обращения к /auth/refresh
// и не больше одного повтора. Сам запрос обновления повторно не авторизуется.
type reauthTransport struct {
	base     http.RoundTripper
	baseURL  string
	tokens   TokenStore
	onLogout LogoutFunc
	log      *slog.Logger
}

func (t *reauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	const op = "api.reauthTransport.RoundTrip"

	resp, err := t.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRefresh(req) {
		return resp, nil
	}
	discard(resp)

	ctx := req.Context()
	if err := t.refresh(req); err != nil {
		metrics.IncReauth("expired")
		t.log.Info("token refresh failed, forcing logout", sl.Err(err), sessionAttr(req))
		if clearErr := t.tokens.ClearTokens(ctx); clearErr != nil {
			t.log.Error("failed to clear tokens", sl.Err(clearErr))
		}
		if t.onLogout != nil {
			t.onLogout(ctx)
		}
		return nil, fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	metrics.IncReauth("refreshed")

	retry := req.Clone(ctx)
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("%s: request body cannot be replayed", op)
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		retry.Body = body
	}
	return t.send(retry)
}

// send выполняет один запрос с токеном и cookies сессии и сохраняет полученные cookies.
func (t *reauthTransport) send(req *http.Request) (*http.Response, error) {
	const op = "api.reauthTransport.send"
	ctx := req.Context()

	token, err := t.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cookies, err := t.tokens.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := req.Clone(ctx)
	out.Header.Del("Authorization")
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	for name, value := range cookies {
		out.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if received := resp.Cookies(); len(received) > 0 {
		update := make(map[string]string, len(received))
		for _, c := range received {
			if c.MaxAge < 0 {
				update[c.Name] = ""
				continue
			}
			update[c.Name] = c.Value
		}
		if err := t.tokens.SetCookies(ctx, update); err != nil {
			t.log.Warn("failed to persist upstream cookies", sl.Err(err))
		}
	}
	return resp, nil
}

// refresh запрашивает новый access-токен и сохраняет его.
func (t *reauthTransport) refresh(orig *http.Request) error {
	const op = "api.reauthTransport.refresh"
	ctx := orig.Context()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+refreshPath, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.send(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("%s: empty access token", op)
	}
	if err := t.tokens.SetAccessToken(ctx, payload.AccessToken); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func isRefresh(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, refreshPath)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func sessionAttr(req *http.Request) slog.Attr {
	id, _ := session.IDFromContext(req.Context())
	return sl.Session(id)
}
