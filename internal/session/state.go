// Package session хранит состояние оформления подписки для одной сессии браузера.
//
// Состояние (State) меняется только через действия (Action), которые применяются
// методом Store.Dispatch. Store сравнивает состояние до и после действий и сохраняет
// его и оповещает подписчиков только при реальном изменении.
package session

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

// UserState данные пользователя и признак входа.
type UserState struct {
	IsLoading  bool        `json:"isLoading"`
	IsLoggedIn bool        `json:"isLoggedIn"`
	User       models.User `json:"user"`
	Error      string      `json:"error"`
}

// CourseState выбранный курс и параметры будущей подписки.
type CourseState struct {
	CourseName     string          `json:"courseName"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	MonthsArray    []int           `json:"monthsArray"`
	NumberOfMonths int             `json:"numberOfMonths"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	DueDate        string          `json:"dueDate"`
	PaymentLink    string          `json:"paymentLink"`
}

// State полное состояние сессии.
type State struct {
	User   UserState   `json:"user"`
	Course CourseState `json:"course"`
}

// Clone возвращает глубокую копию состояния.
func (s State) Clone() State {
	out := s
	out.Course.MonthsArray = slices.Clone(s.Course.MonthsArray)
	return out
}

// HasCourse сообщает, что в сессии выбрана платёжная ссылка.
func (s State) HasCourse() bool {
	return s.Course.PaymentLink != ""
}
