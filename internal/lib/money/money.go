// Package money содержит операции над денежными суммами в тенге.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency единственная валюта платежей.
const Currency = "KZT"

// groupSeparator неразрывный пробел, как в ru-RU.
const groupSeparator = "\u00a0"

// Monthly делит полную стоимость на число месяцев и округляет до копеек (тиын).
// Для months < 1 возвращает ноль.
func Monthly(total decimal.Decimal, months int) decimal.Decimal {
	if months < 1 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(months))).Round(2)
}

// Format форматирует сумму в стиле ru-RU: два знака после запятой,
// разряды разделены неразрывным пробелом («1 234,50»).
func Format(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() && !amount.Round(2).IsZero() {
		b.WriteString("-")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteRune(r)
	}
	b.WriteString(",")
	b.WriteString(frac)
	return b.String()
}
