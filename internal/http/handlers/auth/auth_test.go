package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/popodpiske/checkout-gateway/internal/api"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const sid = "5b0e0c4e-2f0a-4a8e-9c57-8f1f3f0d1a11"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CheckPhone(ctx context.Context, sessionID, phone string) (*checkout.PhoneCheck, error) {
	args := m.Called(ctx, sessionID, phone)
	resp, _ := args.Get(0).(*checkout.PhoneCheck)
	return resp, args.Error(1)
}

func (m *ServiceMock) Login(ctx context.Context, sessionID, phone, password string) (*checkout.AuthResult, error) {
	args := m.Called(ctx, sessionID, phone, password)
	resp, _ := args.Get(0).(*checkout.AuthResult)
	return resp, args.Error(1)
}

func (m *ServiceMock) SetPassword(ctx context.Context, sessionID, password string) (*checkout.AuthResult, error) {
	args := m.Called(ctx, sessionID, password)
	resp, _ := args.Get(0).(*checkout.AuthResult)
	return resp, args.Error(1)
}

func (m *ServiceMock) ResetPassword(ctx context.Context, sessionID string, req models.ResetPasswordRequest) (*models.MessageResponse, error) {
	args := m.Called(ctx, sessionID, req)
	resp, _ := args.Get(0).(*models.MessageResponse)
	return resp, args.Error(1)
}

func (m *ServiceMock) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		assert.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	return req.WithContext(session.WithID(req.Context(), sid))
}

func TestCheckPhone(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "formatted number is normalized",
			body: CheckPhoneRequest{Phone: "+7 (701) 123-45-67"},
			setupMock: func(m *ServiceMock) {
				m.On("CheckPhone", mock.Anything, sid, "+77011234567").
					Return(&checkout.PhoneCheck{Phone: "+77011234567", Exists: true, Next: checkout.NextPassword}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"next":"password"`,
		},
		{
			name:           "invalid phone",
			body:           CheckPhoneRequest{Phone: "8701"},
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Phone must be a phone number in format +7XXXXXXXXXX",
		},
		{
			name:           "invalid json",
			body:           "not a json",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "upstream unavailable",
			body: CheckPhoneRequest{Phone: "+77011234567"},
			setupMock: func(m *ServiceMock) {
				m.On("CheckPhone", mock.Anything, sid, "+77011234567").Return(nil, api.ErrNetwork).Once()
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "Не предвиденная ошибка, попробуйте позже",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).CheckPhone(w, newRequest(t, "/auth/check-phone", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Login", mock.Anything, sid, "+77011234567", "secret").
			Return(&checkout.AuthResult{User: models.User{ID: 3}, Next: checkout.NextDashboard}, nil).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Login(w, newRequest(t, "/auth/login", LoginRequest{Phone: "+7 701 123 45 67", Password: "secret"}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"next":"dashboard"`)
		svc.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Login", mock.Anything, sid, "+77011234567", "bad").
			Return(nil, &api.Error{Status: http.StatusUnauthorized, Message: "Неверный пароль"}).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).Login(w, newRequest(t, "/auth/login", LoginRequest{Phone: "+77011234567", Password: "bad"}))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "{\"status\":\"Error\",\"error\":\"Неверный пароль\"}\n", w.Body.String())
	})
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name           string
		body           RegisterRequest
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: RegisterRequest{Password: "longpassword", ConfirmPassword: "longpassword"},
			setupMock: func(m *ServiceMock) {
				m.On("SetPassword", mock.Anything, sid, "longpassword").
					Return(&checkout.AuthResult{User: models.User{ID: 9}, Next: checkout.NextPayment}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"next":"payment"`,
		},
		{
			name:           "passwords differ",
			body:           RegisterRequest{Password: "longpassword", ConfirmPassword: "otherpassword"},
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field ConfirmPassword must match Password",
		},
		{
			name:           "too short",
			body:           RegisterRequest{Password: "short", ConfirmPassword: "short"},
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Password must be at least 8 characters",
		},
		{
			name: "no phone in session",
			body: RegisterRequest{Password: "longpassword", ConfirmPassword: "longpassword"},
			setupMock: func(m *ServiceMock) {
				m.On("SetPassword", mock.Anything, sid, "longpassword").Return(nil, checkout.ErrNoPhone).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   "Номер телефона не указан",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).Register(w, newRequest(t, "/auth/register", tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestResetPassword(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("ResetPassword", mock.Anything, sid, models.ResetPasswordRequest{
		Phone: "+77011234567", NewPassword: "newpassword", Token: "verify-token",
	}).Return(&models.MessageResponse{Message: "ok"}, nil).Once()
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).ResetPassword(w, newRequest(t, "/auth/reset-password", ResetPasswordRequest{
		Phone:           "+7 701 123 4567",
		Token:           "verify-token",
		NewPassword:     "newpassword",
		ConfirmPassword: "newpassword",
	}))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Logout", mock.Anything, sid).Return(nil).Once()
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc).Logout(w, newRequest(t, "/auth/logout", "{}"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loggedOut":true`)
	svc.AssertExpectations(t)
}
