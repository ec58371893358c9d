// Package jwt читает данные из access-токена основного API.
//
// Подпись токена проверяет сервер, шлюзу ключ неизвестен, поэтому токен разбирается
// без проверки подписи и используется только для логов и состояния сессии.
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed возвращается, если строка не является JWT.
var ErrMalformed = errors.New("malformed access token")

// Claims сведения о владельце токена.
type Claims struct {
	Subject   string    // sub или id пользователя
	ExpiresAt time.Time // нулевое значение, если exp отсутствует
}

// Expired сообщает, истёк ли токен к моменту now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect разбирает токен без проверки подписи.
func Inspect(token string) (*Claims, error) {
	const op = "jwt.Inspect"

	var claims jwt.MapClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrMalformed, err)
	}

	res := &Claims{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		res.ExpiresAt = exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		res.Subject = sub
	}
	if res.Subject == "" {
		for _, key := range []string{"id", "userId", "user_id"} {
			if v, ok := claims[key]; ok {
				res.Subject = stringify(v)
				break
			}
		}
	}
	return res, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
