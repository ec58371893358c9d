package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

func TestPaymentBadge(t *testing.T) {
	tests := []struct {
		status models.PaymentStatus
		want   Badge
	}{
		{models.PaymentSuccess, Badge{Label: "Успешно", Tone: ToneGreen}},
		{models.PaymentFailure, Badge{Label: "Отказ", Tone: ToneRed}},
		{models.PaymentPending, Badge{Label: "В ожидании", Tone: ToneOrange}},
		{models.PaymentCancel, Badge{Label: "Не будет списано", Tone: ToneGray}},
		{models.PaymentStatus("refunded"), Badge{Label: "refunded", Tone: ToneDefault}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentBadge(tt.status))
		})
	}
}

func TestOrderBadge(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   Badge
	}{
		{models.OrderPending, Badge{Label: "В ожидании оплаты", Tone: ToneGray, Background: "bg-gray-100"}},
		{models.OrderActive, Badge{Label: "Активный", Tone: ToneGreen, Background: "bg-green-100"}},
		{models.OrderPastDue, Badge{Label: "Просроченный", Tone: ToneOrange, Background: "bg-orange-200"}},
		{models.OrderCompleted, Badge{Label: "Завершенный", Tone: ToneBlue, Background: "bg-blue-200"}},
		{models.OrderCancelled, Badge{Label: "Отмененный", Tone: ToneRed, Background: "bg-red-200"}},
		{models.OrderStatus("frozen"), Badge{Label: "frozen", Tone: ToneDefault, Background: "white"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, OrderBadge(tt.status))
		})
	}
}
