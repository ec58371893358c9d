package orders

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/popodpiske/checkout-gateway/internal/api"
	"github.com/popodpiske/checkout-gateway/internal/models"
	orderssvc "github.com/popodpiske/checkout-gateway/internal/services/orders"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

const sid = "5b0e0c4e-2f0a-4a8e-9c57-8f1f3f0d1a11"

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, sessionID string) ([]orderssvc.OrderView, error) {
	args := m.Called(ctx, sessionID)
	resp, _ := args.Get(0).([]orderssvc.OrderView)
	return resp, args.Error(1)
}

func (m *ServiceMock) Cancel(ctx context.Context, sessionID string, orderID int) error {
	return m.Called(ctx, sessionID, orderID).Error(0)
}

func (m *ServiceMock) AddPayment(ctx context.Context, sessionID string, orderID int) (*models.PaymentURLResponse, error) {
	args := m.Called(ctx, sessionID, orderID)
	resp, _ := args.Get(0).(*models.PaymentURLResponse)
	return resp, args.Error(1)
}

type ConfirmerMock struct {
	mock.Mock
}

func (m *ConfirmerMock) ConfirmSuccess(ctx context.Context, sessionID string, orderID int, linkUUID string) error {
	return m.Called(ctx, sessionID, orderID, linkUUID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(method, target, id, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(session.WithID(ctx, sid))
}

func TestList(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("List", mock.Anything, sid).Return([]orderssvc.OrderView{{ID: 7, CourseName: "Go Backend", CanCancel: true}}, nil).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc, new(ConfirmerMock)).List(w, newRequest(http.MethodGet, "/orders", "", ""))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"courseName":"Go Backend"`)
		assert.Contains(t, w.Body.String(), `"canCancel":true`)
	})

	t.Run("not logged in", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("List", mock.Anything, sid).Return(nil, api.ErrSessionExpired).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc, new(ConfirmerMock)).List(w, newRequest(http.MethodGet, "/orders", "", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "{\"status\":\"Error\",\"error\":\"session expired\"}\n", w.Body.String())
	})
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		setupMock      func(*ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная отмена",
			id:   "7",
			setupMock: func(m *ServiceMock) {
				m.On("Cancel", mock.Anything, sid, 7).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"orderId":7`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid id"}`,
		},
		{
			name:           "нулевой id",
			id:             "0",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid id"}`,
		},
		{
			name: "бизнес-ошибка",
			id:   "8",
			setupMock: func(m *ServiceMock) {
				m.On("Cancel", mock.Anything, sid, 8).
					Return(&api.Error{Status: http.StatusBadRequest, Message: "Заказ уже завершен"}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Заказ уже завершен",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc, new(ConfirmerMock)).Cancel(w, newRequest(http.MethodDelete, "/orders/"+tt.id, tt.id, ""))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestPaymentMethod(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("AddPayment", mock.Anything, sid, 7).
		Return(&models.PaymentURLResponse{PaymentURL: "https://pay.example/7"}, nil).Once()
	w := httptest.NewRecorder()

	New(newNoopLogger(), svc, new(ConfirmerMock)).PaymentMethod(w, newRequest(http.MethodPost, "/orders/7/payment-method", "7", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentUrl":"https://pay.example/7"`)
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantLink string
	}{
		{name: "without body", body: "", wantLink: ""},
		{name: "with link", body: `{"linkUUID":"0b7f3c1e-6d0e-4a55-9a5e-3c1a2f9b8d10"}`, wantLink: "0b7f3c1e-6d0e-4a55-9a5e-3c1a2f9b8d10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confirmer := new(ConfirmerMock)
			confirmer.On("ConfirmSuccess", mock.Anything, sid, 7, tt.wantLink).Return(nil).Once()
			w := httptest.NewRecorder()

			New(newNoopLogger(), new(ServiceMock), confirmer).Success(w, newRequest(http.MethodPost, "/orders/7/success", "7", tt.body))

			assert.Equal(t, http.StatusOK, w.Code)
			confirmer.AssertExpectations(t)
		})
	}
}
