// Package models содержит доменные структуры шлюза: заказ, платёж, платёжную ссылку и пользователя.
// Поля и JSON-теги совпадают с ответами основного API.
package models

import (
	"github.com/shopspring/decimal"
)

// OrderStatus статус заказа. Переходы между статусами выполняет сервер.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"   // ожидает первого способа оплаты
	OrderActive    OrderStatus = "active"    // списания идут по графику
	OrderPastDue   OrderStatus = "past_due"  // очередное списание не прошло
	OrderCompleted OrderStatus = "completed" // все месяцы оплачены
	OrderCancelled OrderStatus = "cancelled" // отменён пользователем
)

// IsTerminal сообщает, что заказ больше не изменится.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Order подписка на курс с ежемесячными списаниями.
//
// NumberOfMonths не меняется после создания. NextBillingDate равен nil,
// пока у заказа нет привязанного способа оплаты (допустимо только для pending).
type Order struct {
	ID              int             `json:"id"`
	CourseName      string          `json:"courseName"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	NumberOfMonths  int             `json:"numberOfMonths"`
	MonthlyPrice    decimal.Decimal `json:"monthlyPrice"`
	NextBillingDate *string         `json:"nextBillingDate"`
	RemainingMonth  int             `json:"remainingMonth"`
	Status          OrderStatus     `json:"status"`
	UserID          int             `json:"userId"`
	PaymentID       string          `json:"paymentId"`
	Payments        []Payment       `json:"payments"`
	Link            Link            `json:"link"`
}

// HasBillingAnchor сообщает, известна ли следующая дата списания.
func (o Order) HasBillingAnchor() bool {
	return o.NextBillingDate != nil && *o.NextBillingDate != ""
}

// DisplayCourseName возвращает название курса из заказа или из ссылки.
func (o Order) DisplayCourseName() string {
	if o.CourseName != "" {
		return o.CourseName
	}
	return o.Link.Course.CourseName
}
