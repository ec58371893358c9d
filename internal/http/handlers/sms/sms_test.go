package sms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
	"github.com/popodpiske/checkout-gateway/internal/services/failure"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const sid = "5b0e0c4e-2f0a-4a8e-9c57-8f1f3f0d1a11"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) SendCode(ctx context.Context, sessionID, phone string) (time.Duration, error) {
	args := m.Called(ctx, sessionID, phone)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *ServiceMock) Cooldown(ctx context.Context, sessionID string) (time.Duration, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(time.Duration), args.Error(1)
}

func (m *ServiceMock) VerifyCode(ctx context.Context, sessionID, phone, code string, reset bool) (*checkout.VerifyResult, error) {
	args := m.Called(ctx, sessionID, phone, code, reset)
	resp, _ := args.Get(0).(*checkout.VerifyResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(session.WithID(req.Context(), sid))
}

func TestSend(t *testing.T) {
	t.Run("empty body uses session phone", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("SendCode", mock.Anything, sid, "").Return(60*time.Second, nil).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Send(w, newRequest(http.MethodPost, "/sms/send", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"seconds":60`)
		svc.AssertExpectations(t)
	})

	t.Run("phone is normalized", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("SendCode", mock.Anything, sid, "+77011234567").Return(60*time.Second, nil).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Send(w, newRequest(http.MethodPost, "/sms/send", `{"phone":"+7 (701) 123-45-67"}`))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("cooldown", func(t *testing.T) {
		cooldown := &checkout.CooldownError{Remaining: 42500 * time.Millisecond}
		err := fmt.Errorf("checkout.SendCode: %w: %w", failure.TooManyRequests(cooldown.Error()), cooldown)
		svc := new(ServiceMock)
		svc.On("SendCode", mock.Anything, sid, "").Return(cooldown.Remaining, err).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Send(w, newRequest(http.MethodPost, "/sms/send", "{}"))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "43", w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "Повторная отправка кода будет доступна через 43 сек.")
	})

	t.Run("invalid phone", func(t *testing.T) {
		svc := new(ServiceMock)
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Send(w, newRequest(http.MethodPost, "/sms/send", `{"phone":"123"}`))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		svc.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCooldown(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Cooldown", mock.Anything, sid).Return(1500*time.Millisecond, nil).Once()
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).Cooldown(w, newRequest(http.MethodGet, "/sms/cooldown", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"seconds":2`)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"code":"12345"}`,
			setupMock: func(m *ServiceMock) {
				m.On("VerifyCode", mock.Anything, sid, "", "12345", false).
					Return(&checkout.VerifyResult{Phone: "+77011234567", Token: "t", Next: checkout.NextSetPassword}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"next":"set-password"`,
		},
		{
			name: "reset flow",
			body: `{"phone":"+77011234567","code":"12345","reset":true}`,
			setupMock: func(m *ServiceMock) {
				m.On("VerifyCode", mock.Anything, sid, "+77011234567", "12345", true).
					Return(&checkout.VerifyResult{Next: checkout.NextResetPassword}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"next":"reset-password"`,
		},
		{
			name:           "short code",
			body:           `{"code":"123"}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Code must be exactly 5 characters",
		},
		{
			name:           "letters in code",
			body:           `{"code":"12a45"}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Code can contain only numbers",
		},
		{
			name:           "missing body",
			body:           "",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).Verify(w, newRequest(http.MethodPost, "/sms/verify", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
