package models

import "github.com/shopspring/decimal"

// Course курс, продаваемый по платёжной ссылке.
type Course struct {
	CourseName string          `json:"courseName"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Link платёжная ссылка: курс и допустимые сроки подписки в месяцах.
type Link struct {
	UUID        string `json:"uuid,omitempty"`
	Course      Course `json:"course"`
	MonthsArray []int  `json:"monthsArray"`
}
