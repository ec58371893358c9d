package checkout

import (
	"context"
	"fmt"

	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/services/failure"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// Следующий экран после успешного шага.
const (
	NextPersonalInfo  = "personal-info"
	NextDashboard     = "dashboard"
	NextPassword      = "password"
	NextPayment       = "payment"
	NextSetPassword   = "set-password"
	NextResetPassword = "reset-password"
)

// PhoneCheck результат проверки номера.
type PhoneCheck struct {
	Phone  string `json:"phone"`
	Exists bool   `json:"exists"`
	Next   string `json:"next"`
}

// AuthResult результат входа или регистрации.
type AuthResult struct {
	User models.User `json:"user"`
	Next string      `json:"next"`
}

// CheckPhone нормализует номер и узнаёт, зарегистрирован ли он.
// Для нового номера телефон сохраняется в сессии и следующий шаг — личные данные
// (или кабинет, если ссылка не выбрана). Для существующего — ввод пароля.
func (s *Service) CheckPhone(ctx context.Context, sessionID, rawPhone string) (*PhoneCheck, error) {
	const op = "checkout.CheckPhone"

	phone := validate.NormalizePhone(rawPhone)
	if !validate.Phone(phone) {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrInvalidPhone))
	}

	exists, err := s.api.CheckPhone(ctx, phone)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if exists {
		return &PhoneCheck{Phone: phone, Exists: true, Next: NextPassword}, nil
	}

	st, err := s.sessions.Dispatch(ctx, sessionID, session.PhoneEntered(phone))
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	return &PhoneCheck{Phone: phone, Exists: false, Next: afterIdentity(st)}, nil
}

// Login входит по телефону и паролю.
func (s *Service) Login(ctx context.Context, sessionID, rawPhone, password string) (*AuthResult, error) {
	const op = "checkout.Login"

	phone := validate.NormalizePhone(rawPhone)
	if !validate.Phone(phone) {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrInvalidPhone))
	}

	if _, err := s.sessions.Dispatch(ctx, sessionID, session.UserLoading()); err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := s.api.Login(ctx, models.LoginRequest{Login: phone, Password: password})
	if err != nil {
		err = s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
		s.markFailed(ctx, sessionID, err)
		return nil, err
	}

	st, err := s.sessions.Dispatch(ctx, sessionID, session.UserCreated(resp.User), session.UserLoggedIn())
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	return &AuthResult{User: resp.User, Next: afterIdentity(st)}, nil
}

// SetPassword регистрирует пользователя из сессии с паролем и выполняет вход.
func (s *Service) SetPassword(ctx context.Context, sessionID, password string) (*AuthResult, error) {
	const op = "checkout.SetPassword"

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackSetPassword, fmt.Errorf("%s: %w", op, err))
	}
	if st.User.User.Phone == "" {
		return nil, s.fail(ctx, sessionID, op, fallbackSetPassword, fmt.Errorf("%s: %w", op, ErrNoPhone))
	}

	if _, err := s.sessions.Dispatch(ctx, sessionID, session.UserLoading()); err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackSetPassword, fmt.Errorf("%s: %w", op, err))
	}

	resp, err := s.api.Register(ctx, models.RegisterRequest{User: st.User.User, Password: password})
	if err != nil {
		err = s.fail(ctx, sessionID, op, fallbackSetPassword, fmt.Errorf("%s: %w", op, err))
		s.markFailed(ctx, sessionID, err)
		return nil, err
	}

	if _, err := s.sessions.Dispatch(ctx, sessionID, session.UserCreated(resp.User), session.UserLoggedIn()); err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackSetPassword, fmt.Errorf("%s: %w", op, err))
	}
	return &AuthResult{User: resp.User, Next: NextPayment}, nil
}

// ResetPassword задаёт новый пароль по токену подтверждения номера.
func (s *Service) ResetPassword(ctx context.Context, sessionID string, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	const op = "checkout.ResetPassword"

	req.Phone = validate.NormalizePhone(req.Phone)
	if !validate.Phone(req.Phone) {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrInvalidPhone))
	}

	resp, err := s.api.ResetPassword(ctx, req)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	s.succeed(ctx, sessionID, op, "Пароль изменён")
	return resp, nil
}

// Logout завершает сессию пользователя.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	const op = "checkout.Logout"

	if err := s.api.Logout(ctx); err != nil {
		return s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if _, err := s.sessions.Dispatch(ctx, sessionID, session.UserClosed()); err != nil {
		return s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ForceLogout сбрасывает пользователя сессии после неудачного обновления токена.
func (s *Service) ForceLogout(ctx context.Context) {
	sessionID, ok := session.IDFromContext(ctx)
	if !ok {
		return
	}
	if _, err := s.sessions.Dispatch(ctx, sessionID, session.UserClosed()); err != nil {
		s.log.Error("failed to close user session", sl.Session(sessionID), sl.Err(err))
	}
}

func (s *Service) markFailed(ctx context.Context, sessionID string, err error) {
	_, msg := failure.Describe(err)
	if _, dErr := s.sessions.Dispatch(ctx, sessionID, session.UserFailed(msg)); dErr != nil {
		s.log.Error("failed to store user error", sl.Session(sessionID), sl.Err(dErr))
	}
}

func afterIdentity(st session.State) string {
	if st.HasCourse() {
		return NextPersonalInfo
	}
	return NextDashboard
}
