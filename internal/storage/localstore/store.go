// Package localstore хранит в Redis данные, которые SPA держала в localStorage браузера:
// access-токен, cookies основного API, время отправки SMS, состояние сессии
// и кэш списка заказов. Все ключи привязаны к идентификатору сессии.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/popodpiske/checkout-gateway/internal/config"
)

// Store обёртка над клиентом Redis.
type Store struct {
	Db         *redis.Client
	sessionTTL time.Duration
	ordersTTL  time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection, storage config.Storage) (*Store, error) {
	const op = "localstore.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return New(db, storage), nil
}

// New создаёт Store поверх готового клиента.
func New(db *redis.Client, storage config.Storage) *Store {
	return &Store{Db: db, sessionTTL: storage.SessionTTL, ordersTTL: storage.OrdersTTL}
}

// Close закрывает соединение.
func (s *Store) Close() error {
	return s.Db.Close()
}

// Ping проверяет доступность Redis.
func (s *Store) Ping(ctx context.Context) error {
	return s.Db.Ping(ctx).Err()
}

func key(sessionID, field string) string {
	return fmt.Sprintf("session:%s:%s", sessionID, field)
}

func (s *Store) getJSON(ctx context.Context, k string, result any) (bool, error) {
	const op = "localstore.Get"
	val, err := s.Db.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, k string, value any, expiration time.Duration) error {
	const op = "localstore.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Db.Set(ctx, k, data, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) del(ctx context.Context, keys ...string) error {
	const op = "localstore.Invalidate"
	if err := s.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
