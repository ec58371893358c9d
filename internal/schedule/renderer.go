package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/lib/money"
)

// Mode вид отображения графика.
type Mode string

const (
	ModeFull      Mode = "full"
	ModeCondensed Mode = "condensed"
)

const (
	ellipsisTitle       = "..."
	ellipsisDescription = "Промежуточные месяцы"
)

// Step шаг графика на экране подтверждения.
type Step struct {
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Date        string           `json:"date,omitempty"`
	DisplayDate string           `json:"displayDate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	AmountText  string           `json:"amountText,omitempty"`
	Ellipsis    bool             `json:"ellipsis,omitempty"`
}

// Steps график и индекс активного шага.
type Steps struct {
	Mode   Mode   `json:"mode"`
	Active int    `json:"active"`
	Items  []Step `json:"items"`
}

// RenderSchedule строит график из numberOfMonths списаний по monthlyAmount начиная с anchor.
//
// Если месяцев не больше threshold, показывается каждый месяц. Иначе график сжимается
// до трёх шагов: первый месяц, многоточие и последний месяц. Записанные платежи не учитываются.
func RenderSchedule(anchor time.Time, numberOfMonths int, monthlyAmount decimal.Decimal, currentMonthIndex int, threshold int) Steps {
	if numberOfMonths < 1 {
		return Steps{Mode: ModeFull, Items: []Step{}}
	}

	if numberOfMonths <= threshold {
		items := make([]Step, 0, numberOfMonths)
		for i := 0; i < numberOfMonths; i++ {
			items = append(items, monthStep(i+1, monthDate(anchor, i), monthlyAmount))
		}
		return Steps{Mode: ModeFull, Active: currentMonthIndex, Items: items}
	}

	last := numberOfMonths - 1
	active := 1
	switch {
	case currentMonthIndex <= 0:
		active = 0
	case currentMonthIndex >= last:
		active = 2
	}

	return Steps{
		Mode:   ModeCondensed,
		Active: active,
		Items: []Step{
			monthStep(1, monthDate(anchor, 0), monthlyAmount),
			{Title: ellipsisTitle, Description: ellipsisDescription, Ellipsis: true},
			monthStep(numberOfMonths, monthDate(anchor, last), monthlyAmount),
		},
	}
}

func monthStep(n int, date time.Time, amount decimal.Decimal) Step {
	a := amount
	return Step{
		Title:       fmt.Sprintf("Месяц %d", n),
		Date:        billing.FormatISO(date),
		DisplayDate: billing.FormatDisplay(date),
		Amount:      &a,
		AmountText:  money.Format(amount),
	}
}

// monthDate дата i-го месяца: сам anchor для i == 0, иначе сдвиг движком дат.
func monthDate(anchor time.Time, i int) time.Time {
	if i == 0 {
		return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	}
	return billing.AddMonths(anchor, i)
}
