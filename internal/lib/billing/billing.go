// Package billing вычисляет даты списаний по подписке.
//
// Все вычисления ведутся над «наивными» календарными датами без перевода часовых поясов:
// из входного значения берутся год, месяц и день, результат всегда дата без времени.
package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ISOLayout формат даты списания в API и в ответах шлюза.
	ISOLayout = "2006-01-02"
	// DisplayLayout формат даты для отображения пользователю.
	DisplayLayout = "02.01.2006"
)

// ErrInvalidDate возвращается, если дату не удалось разобрать.
var ErrInvalidDate = errors.New("invalid billing date")

// Now источник текущего времени. Подменяется в тестах.
var Now = time.Now

var inputLayouts = []string{
	ISOLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// Parse разбирает дату в формате YYYY-MM-DD или ISO-8601 с временем
// и возвращает полночь этого календарного дня в UTC.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return dateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// AddMonths сдвигает дату на monthsToAdd календарных месяцев с сохранением дня месяца.
//
// monthsToAdd меньше единицы считается равным 1, дата никогда не остаётся прежней.
// Если в целевом месяце нет такого дня (31 января + 1 месяц), результат —
// первое число месяца, в который «перелилась» дата (1 марта), а не последний день февраля.
func AddMonths(t time.Time, monthsToAdd int) time.Time {
	if monthsToAdd < 1 {
		monthsToAdd = 1
	}
	t = dateOf(t)
	next := t.AddDate(0, monthsToAdd, 0)
	if next.Day() != t.Day() {
		next = time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return next
}

// NextBillingDate возвращает следующую дату списания в формате YYYY-MM-DD.
// Пустая currentDate означает «сегодня».
func NextBillingDate(currentDate string, monthsToAdd int) (string, error) {
	const op = "billing.NextBillingDate"

	start := Today()
	if strings.TrimSpace(currentDate) != "" {
		parsed, err := Parse(currentDate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		start = parsed
	}
	return FormatISO(AddMonths(start, monthsToAdd)), nil
}

// Today возвращает текущую дату без времени.
func Today() time.Time {
	return dateOf(Now())
}

// FormatISO форматирует дату как YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// FormatDisplay форматирует дату как DD.MM.YYYY.
func FormatDisplay(t time.Time) string {
	return t.Format(DisplayLayout)
}

// DisplayFromISO переводит YYYY-MM-DD в DD.MM.YYYY.
func DisplayFromISO(value string) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return FormatDisplay(t), nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
