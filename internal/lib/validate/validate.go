// Package validate содержит проверки персональных данных: номер телефона и ИИН.
//
// New возвращает validator.Validate с зарегистрированными тегами "kzphone" и "iin",
// которые используются в запросах HTTP-обработчиков.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

const (
	// TagPhone тег проверки номера телефона в формате +7XXXXXXXXXX.
	TagPhone = "kzphone"
	// TagIIN тег проверки индивидуального идентификационного номера.
	TagIIN = "iin"

	maxPhoneLen = 12
	iinLen      = 12
)

// Now источник текущего времени для проверки даты рождения в ИИН.
var Now = time.Now

var (
	phoneChars   = regexp.MustCompile(`[^0-9+]`)
	phonePattern = regexp.MustCompile(`^\+7\d{10}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

// New создаёт валидатор с пользовательскими тегами.
func New() *validator.Validate {
	v := validator.New()
	// ошибки регистрации возможны только при пустом теге или nil-функции
	_ = v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
	_ = v.RegisterValidation(TagIIN, func(fl validator.FieldLevel) bool {
		return IIN(fl.Field().String(), Now())
	})
	return v
}

// NormalizePhone оставляет только цифры и '+' и обрезает номер до 12 символов.
func NormalizePhone(raw string) string {
	phone := phoneChars.ReplaceAllString(raw, "")
	if len(phone) > maxPhoneLen {
		phone = phone[:maxPhoneLen]
	}
	return phone
}

// Phone проверяет нормализованный номер.
func Phone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// IIN проверяет ИИН: 12 цифр, первые шесть — дата рождения YYMMDD.
// Век определяется относительно текущего года: YY больше двух последних цифр
// текущего года — 1900-е, иначе 2000-е.
func IIN(iin string, now time.Time) bool {
	iin = strings.TrimSpace(iin)
	if len(iin) != iinLen || !digitsOnly.MatchString(iin) {
		return false
	}

	yy, _ := strconv.Atoi(iin[0:2])
	mm, _ := strconv.Atoi(iin[2:4])
	dd, _ := strconv.Atoi(iin[4:6])
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return false
	}

	currentYear := now.Year()
	fullYear := yy + 2000
	if yy > currentYear%100 {
		fullYear = yy + 1900
	}

	dob := time.Date(fullYear, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if dob.Year() != fullYear || int(dob.Month()) != mm || dob.Day() != dd {
		return false
	}
	return fullYear <= currentYear
}
