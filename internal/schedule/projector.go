// Package schedule строит график платежей по подписке.
//
// BuildSchedule дополняет записанные платежи заказа прогнозными до полного срока подписки,
// RenderSchedule готовит пошаговый график для экрана подтверждения до покупки.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/lib/money"
	"github.com/popodpiske/checkout-gateway/internal/models"
)

// BuildSchedule возвращает ровно NumberOfMonths слотов графика для заказа.
//
// Записанные платежи сортируются по дате и занимают первые позиции. Слоты сопоставляются
// по позиции, а не по дате: i-й записанный платёж считается платежом i-го месяца.
// Остальные слоты заполняются прогнозными платежами (ID == 0), начиная с NextBillingDate
// и с шагом в один месяц. У отменённого заказа прогнозные платежи получают статус cancel.
// Заказ в статусе pending без даты списания ещё не имеет графика: результат пустой.
func BuildSchedule(order models.Order) ([]models.Payment, error) {
	const op = "schedule.BuildSchedule"

	if order.Status == models.OrderPending && !order.HasBillingAnchor() {
		return []models.Payment{}, nil
	}
	if order.NumberOfMonths < 1 {
		return []models.Payment{}, nil
	}

	recorded, _ := sortedPayments(order.Payments)

	projectedStatus := models.PaymentPending
	if order.Status == models.OrderCancelled {
		projectedStatus = models.PaymentCancel
	}

	cursor := ""
	if order.HasBillingAnchor() {
		cursor = *order.NextBillingDate
	}

	result := make([]models.Payment, 0, order.NumberOfMonths)
	for i := 0; i < order.NumberOfMonths; i++ {
		if i < len(recorded) {
			result = append(result, recorded[i])
			continue
		}

		if cursor == "" {
			cursor = billing.FormatISO(billing.Today())
		}
		date, err := billing.Parse(cursor)
		if err != nil {
			return nil, fmt.Errorf("%s: order %d: %w", op, order.ID, err)
		}
		result = append(result, models.Payment{
			ID:          0,
			Amount:      order.MonthlyPrice,
			Currency:    money.Currency,
			Status:      projectedStatus,
			PaymentDate: billing.FormatISO(date),
		})
		cursor = billing.FormatISO(billing.AddMonths(date, 1))
	}
	return result, nil
}

// UnparsableDates считает записанные платежи, дату которых нельзя разобрать.
// Такие платежи встают в начало графика и сдвигают сопоставление слотов.
func UnparsableDates(payments []models.Payment) int {
	_, invalid := sortedPayments(payments)
	return invalid
}

// sortedPayments возвращает копию платежей, упорядоченную по дате, и число платежей
// с неразборчивой датой. Такие платежи идут первыми в исходном порядке.
func sortedPayments(payments []models.Payment) ([]models.Payment, int) {
	type keyed struct {
		payment models.Payment
		date    time.Time
		valid   bool
	}
	items := make([]keyed, len(payments))
	invalid := 0
	for i, p := range payments {
		date, err := billing.Parse(p.PaymentDate)
		items[i] = keyed{payment: p, date: date, valid: err == nil}
		if err != nil {
			invalid++
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].valid != items[j].valid {
			return !items[i].valid
		}
		return items[i].date.Before(items[j].date)
	})

	out := make([]models.Payment, len(items))
	for i, item := range items {
		out[i] = item.payment
	}
	return out, invalid
}
