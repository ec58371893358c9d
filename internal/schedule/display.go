package schedule

import "github.com/popodpiske/checkout-gateway/internal/models"

// Tone цвет бейджа статуса.
type Tone string

const (
	ToneDefault Tone = "default"
	ToneGreen   Tone = "green"
	ToneRed     Tone = "red"
	ToneOrange  Tone = "orange"
	ToneGray    Tone = "gray"
	ToneBlue    Tone = "blue"
)

// Badge подпись и цвет статуса для интерфейса.
type Badge struct {
	Label      string `json:"label"`
	Tone       Tone   `json:"tone"`
	Background string `json:"background,omitempty"`
}

// PaymentBadge отображение статуса платежа. Неизвестный статус показывается как есть.
func PaymentBadge(status models.PaymentStatus) Badge {
	switch status {
	case models.PaymentSuccess:
		return Badge{Label: "Успешно", Tone: ToneGreen}
	case models.PaymentFailure:
		return Badge{Label: "Отказ", Tone: ToneRed}
	case models.PaymentPending:
		return Badge{Label: "В ожидании", Tone: ToneOrange}
	case models.PaymentCancel:
		return Badge{Label: "Не будет списано", Tone: ToneGray}
	default:
		return Badge{Label: string(status), Tone: ToneDefault}
	}
}

// OrderBadge отображение статуса заказа с цветом фона карточки.
func OrderBadge(status models.OrderStatus) Badge {
	switch status {
	case models.OrderPending:
		return Badge{Label: "В ожидании оплаты", Tone: ToneGray, Background: "bg-gray-100"}
	case models.OrderActive:
		return Badge{Label: "Активный", Tone: ToneGreen, Background: "bg-green-100"}
	case models.OrderPastDue:
		return Badge{Label: "Просроченный", Tone: ToneOrange, Background: "bg-orange-200"}
	case models.OrderCompleted:
		return Badge{Label: "Завершенный", Tone: ToneBlue, Background: "bg-blue-200"}
	case models.OrderCancelled:
		return Badge{Label: "Отмененный", Tone: ToneRed, Background: "bg-red-200"}
	default:
		return Badge{Label: string(status), Tone: ToneDefault, Background: "white"}
	}
}
