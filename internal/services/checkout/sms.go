package checkout

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
	"github.com/popodpiske/checkout-gateway/internal/services/failure"
)

// CooldownError повторная отправка кода раньше окончания таймера.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Повторная отправка кода будет доступна через %d сек.", Seconds(e.Remaining))
}

// Seconds округляет оставшееся время вверх до секунд.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// VerifyResult результат проверки кода.
type VerifyResult struct {
	Phone string `json:"phone"`
	Token string `json:"token"`
	Next  string `json:"next"`
}

// Cooldown возвращает, сколько осталось до возможности повторной отправки кода.
func (s *Service) Cooldown(ctx context.Context, sessionID string) (time.Duration, error) {
	const op = "checkout.Cooldown"

	sentAt, ok, err := s.storage.SMSSentAt(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return 0, nil
	}
	remaining := s.cooldown - s.now().Sub(sentAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// SendCode отправляет код на номер rawPhone или, если он пуст, на номер пользователя сессии.
// Таймер повторной отправки занимается атомарно до запроса и не сбрасывается при ошибке,
// поэтому из параллельных запросов одной сессии код отправляет только один.
func (s *Service) SendCode(ctx context.Context, sessionID, rawPhone string) (time.Duration, error) {
	const op = "checkout.SendCode"

	phone, err := s.resolvePhone(ctx, sessionID, rawPhone)
	if err != nil {
		return 0, s.fail(ctx, sessionID, op, fallbackSendSMS, fmt.Errorf("%s: %w", op, err))
	}

	now := s.now()
	claimed, sentAt, err := s.storage.ClaimSMS(ctx, sessionID, now, s.cooldown)
	if err != nil {
		return 0, s.fail(ctx, sessionID, op, fallbackSendSMS, fmt.Errorf("%s: %w", op, err))
	}
	if !claimed {
		remaining := s.cooldown - now.Sub(sentAt)
		if remaining < time.Second {
			// таймер в Redis ещё жив, хотя по часам шлюза уже истёк
			remaining = time.Second
		}
		metrics.IncSMS("cooldown")
		cooldownErr := &CooldownError{Remaining: remaining}
		return remaining, s.fail(ctx, sessionID, op, fallbackSendSMS,
			fmt.Errorf("%s: %w: %w", op, failure.TooManyRequests(cooldownErr.Error()), cooldownErr))
	}

	if _, err := s.api.SendCode(ctx, phone); err != nil {
		metrics.IncSMS("failed")
		return s.cooldown, s.fail(ctx, sessionID, op, fallbackSendSMS, fmt.Errorf("%s: %w", op, err))
	}
	metrics.IncSMS("sent")
	s.succeed(ctx, sessionID, op, "Код отправлен на номер "+phone)
	return s.cooldown, nil
}

// VerifyCode проверяет код из SMS.
//
// При reset == true это шаг восстановления пароля и дальше идёт сброс пароля.
// Иначе после проверки вошедший пользователь переходит к оплате, новый — к созданию пароля.
func (s *Service) VerifyCode(ctx context.Context, sessionID, rawPhone, code string, reset bool) (*VerifyResult, error) {
	const op = "checkout.VerifyCode"

	phone, err := s.resolvePhone(ctx, sessionID, rawPhone)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackVerifySMS, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := s.api.VerifyCode(ctx, phone, code)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackVerifySMS, fmt.Errorf("%s: %w", op, err))
	}
	s.succeed(ctx, sessionID, op, "Код подтвержден")

	result := &VerifyResult{Phone: resp.Phone, Token: resp.Token}
	if result.Phone == "" {
		result.Phone = phone
	}
	if reset {
		result.Next = NextResetPassword
		return result, nil
	}

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackVerifySMS, fmt.Errorf("%s: %w", op, err))
	}
	loggedIn, err := s.isLoggedIn(ctx, st)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackVerifySMS, fmt.Errorf("%s: %w", op, err))
	}
	if loggedIn {
		result.Next = NextPayment
	} else {
		result.Next = NextSetPassword
	}
	return result, nil
}

func (s *Service) resolvePhone(ctx context.Context, sessionID, rawPhone string) (string, error) {
	if rawPhone != "" {
		phone := validate.NormalizePhone(rawPhone)
		if !validate.Phone(phone) {
			return "", ErrInvalidPhone
		}
		return phone, nil
	}
	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if st.User.User.Phone == "" {
		return "", ErrNoPhone
	}
	return st.User.User.Phone, nil
}
