package localstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const (
	fieldState   = "state"
	fieldToken   = "access_token"
	fieldCookies = "cookies"
	fieldSMS     = "sms_sent_at"
	fieldOrders  = "orders"
)

// ErrNoSession возвращается, если в контексте нет идентификатора сессии.
var ErrNoSession = errors.New("session id is missing in context")

// LoadState реализует session.Repository.
func (s *Store) LoadState(ctx context.Context, sessionID string) (session.State, bool, error) {
	var st session.State
	found, err := s.getJSON(ctx, key(sessionID, fieldState), &st)
	if err != nil {
		return session.State{}, false, err
	}
	return st, found, nil
}

// SaveState реализует session.Repository.
func (s *Store) SaveState(ctx context.Context, sessionID string, st session.State) error {
	return s.setJSON(ctx, key(sessionID, fieldState), st, s.sessionTTL)
}

// AccessToken возвращает access-токен сессии из контекста или пустую строку.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	const op = "localstore.AccessToken"
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	token, err := s.Db.Get(ctx, key(id, fieldToken)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// SetAccessToken сохраняет access-токен сессии из контекста.
func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	const op = "localstore.SetAccessToken"
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	if err := s.Db.Set(ctx, key(id, fieldToken), token, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Cookies возвращает cookies основного API, полученные сессией.
func (s *Store) Cookies(ctx context.Context) (map[string]string, error) {
	const op = "localstore.Cookies"
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	cookies := map[string]string{}
	if _, err := s.getJSON(ctx, key(id, fieldCookies), &cookies); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cookies, nil
}

// SetCookies сохраняет cookies основного API. Пустое значение удаляет cookie.
func (s *Store) SetCookies(ctx context.Context, update map[string]string) error {
	const op = "localstore.SetCookies"
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	cookies, err := s.Cookies(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for name, value := range update {
		if value == "" {
			delete(cookies, name)
			continue
		}
		cookies[name] = value
	}
	return s.setJSON(ctx, key(id, fieldCookies), cookies, s.sessionTTL)
}

// ClearTokens удаляет access-токен, cookies и кэш заказов сессии.
func (s *Store) ClearTokens(ctx context.Context) error {
	const op = "localstore.ClearTokens"
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	return s.del(ctx, key(id, fieldToken), key(id, fieldCookies), key(id, fieldOrders))
}

// SMSSentAt возвращает момент последней отправки кода.
func (s *Store) SMSSentAt(ctx context.Context, sessionID string) (time.Time, bool, error) {
	const op = "localstore.SMSSentAt"
	raw, err := s.Db.Get(ctx, key(sessionID, fieldSMS)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", op, err)
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return time.UnixMilli(millis), true, nil
}

// ClaimSMS атомарно запускает таймер повторной отправки кода на cooldown.
// Если таймер уже идёт, возвращает claimed == false и момент прошлой отправки.
func (s *Store) ClaimSMS(ctx context.Context, sessionID string, at time.Time, cooldown time.Duration) (bool, time.Time, error) {
	const op = "localstore.ClaimSMS"
	k := key(sessionID, fieldSMS)
	value := strconv.FormatInt(at.UnixMilli(), 10)

	// ключ может истечь между SETNX и GET, тогда пробуем ещё раз
	for i := 0; i < 2; i++ {
		ok, err := s.Db.SetNX(ctx, k, value, cooldown).Result()
		if err != nil {
			return false, time.Time{}, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			return true, at, nil
		}
		sentAt, found, err := s.SMSSentAt(ctx, sessionID)
		if err != nil {
			return false, time.Time{}, fmt.Errorf("%s: %w", op, err)
		}
		if found {
			return false, sentAt, nil
		}
	}
	return false, at, nil
}

// CachedOrders возвращает закэшированный список заказов (тег Orders).
func (s *Store) CachedOrders(ctx context.Context, sessionID string) ([]models.Order, bool, error) {
	var orders []models.Order
	found, err := s.getJSON(ctx, key(sessionID, fieldOrders), &orders)
	if err != nil {
		return nil, false, err
	}
	return orders, found, nil
}

// CacheOrders кэширует список заказов сессии.
func (s *Store) CacheOrders(ctx context.Context, sessionID string, orders []models.Order) error {
	return s.setJSON(ctx, key(sessionID, fieldOrders), orders, s.ordersTTL)
}

// InvalidateOrders сбрасывает кэш заказов сессии.
func (s *Store) InvalidateOrders(ctx context.Context, sessionID string) error {
	return s.del(ctx, key(sessionID, fieldOrders))
}
