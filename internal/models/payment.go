package models

import "github.com/shopspring/decimal"

// PaymentStatus статус отдельного списания.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailure PaymentStatus = "failure"
	PaymentPending PaymentStatus = "pending"
	PaymentCancel  PaymentStatus = "cancel"
)

// Payment списание по заказу. ID == 0 у прогнозных платежей,
// которые строит клиент; такие платежи никогда не считаются проведёнными.
type Payment struct {
	ID          int             `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      PaymentStatus   `json:"status"`
	PaymentDate string          `json:"paymentDate"`
}

// IsProjected сообщает, что платёж построен прогнозом и не записан на сервере.
func (p Payment) IsProjected() bool {
	return p.ID == 0
}
