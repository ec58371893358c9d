package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LoginRequest тело POST /auth/login. Логином служит нормализованный номер телефона.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RegisterRequest тело POST /auth/register.
type RegisterRequest struct {
	User
	Password string `json:"password"`
}

// AuthResponse ответ login/register/refresh.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}

// ResetPasswordRequest тело POST /auth/reset-password.
type ResetPasswordRequest struct {
	Phone       string `json:"phone"`
	NewPassword string `json:"newPassword"`
	Token       string `json:"token"`
}

// VerifyCodeResponse ответ POST /sms/verify.
type VerifyCodeResponse struct {
	Phone string `json:"phone"`
	Token string `json:"token"`
}

// CreateOrderRequest тело POST /orders.
type CreateOrderRequest struct {
	NumberOfMonths int             `json:"numberOfMonths"`
	MonthlyPrice   decimal.Decimal `json:"monthlyPrice"`
	LinkUUID       string          `json:"linkUUID"`
}

// MarshalJSON передаёт сумму числом независимо от настроек decimal: основной API не принимает строку.
func (r CreateOrderRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		NumberOfMonths int         `json:"numberOfMonths"`
		MonthlyPrice   json.Number `json:"monthlyPrice"`
		LinkUUID       string      `json:"linkUUID"`
	}{
		NumberOfMonths: r.NumberOfMonths,
		MonthlyPrice:   json.Number(r.MonthlyPrice.String()),
		LinkUUID:       r.LinkUUID,
	})
}

// PaymentURLResponse ответ, содержащий ссылку на страницу оплаты.
type PaymentURLResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// MessageResponse ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
