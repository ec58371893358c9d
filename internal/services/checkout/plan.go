package checkout

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/lib/money"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// Plan расчёт подписки для выбранного срока.
type Plan struct {
	Options        []int           `json:"options"`
	NumberOfMonths int             `json:"numberOfMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	MonthlyText    string          `json:"monthlyText"`
	// DueDate дата следующего списания после первого платежа, DD.MM.YYYY.
	DueDate string `json:"dueDate"`
	// LastDate дата последнего списания, DD.MM.YYYY.
	LastDate string `json:"lastDate"`
}

// BuildPlan считает план по курсу из сессии. months == 0 выбирает наименьший доступный срок.
func BuildPlan(course session.CourseState, months int) (Plan, error) {
	const op = "checkout.BuildPlan"

	options := slices.Clone(course.MonthsArray)
	slices.Sort(options)
	options = slices.Compact(options)
	if len(options) == 0 {
		return Plan{}, fmt.Errorf("%s: %w", op, ErrInvalidMonths)
	}
	if months == 0 {
		months = options[0]
	}
	if !slices.Contains(options, months) || months < 1 {
		return Plan{}, fmt.Errorf("%s: %w", op, ErrInvalidMonths)
	}

	dueISO, err := billing.NextBillingDate("", 1)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	lastISO, err := billing.NextBillingDate(dueISO, months-2)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	due, err := billing.DisplayFromISO(dueISO)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	last, err := billing.DisplayFromISO(lastISO)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", op, err)
	}

	monthly := money.Monthly(course.TotalPrice, months)
	return Plan{
		Options:        options,
		NumberOfMonths: months,
		MonthlyPayment: monthly,
		MonthlyText:    money.Format(monthly),
		DueDate:        due,
		LastDate:       last,
	}, nil
}
