package session

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/models"
)

// Action именованное изменение состояния.
type Action struct {
	Name  string
	apply func(*State)
}

// CourseSelected запоминает курс из платёжной ссылки.
func CourseSelected(linkUUID string, link models.Link) Action {
	return Action{Name: "course/selected", apply: func(s *State) {
		s.Course.CourseName = link.Course.CourseName
		s.Course.TotalPrice = link.Course.TotalPrice
		s.Course.MonthsArray = slices.Clone(link.MonthsArray)
		s.Course.PaymentLink = linkUUID
	}}
}

// PlanChosen запоминает выбранный срок, ежемесячный платёж и дату первого списания.
func PlanChosen(months int, monthly decimal.Decimal, dueDate string) Action {
	return Action{Name: "course/plan-chosen", apply: func(s *State) {
		s.Course.NumberOfMonths = months
		s.Course.MonthlyPayment = monthly
		s.Course.DueDate = dueDate
	}}
}

// ClearCourse сбрасывает выбранный курс.
func ClearCourse() Action {
	return Action{Name: "course/cleared", apply: func(s *State) {
		s.Course = CourseState{}
	}}
}

// UserLoading отмечает начало запроса от имени пользователя.
func UserLoading() Action {
	return Action{Name: "user/loading", apply: func(s *State) {
		s.User.IsLoading = true
	}}
}

// UserCreated сохраняет данные пользователя.
func UserCreated(user models.User) Action {
	return Action{Name: "user/created", apply: func(s *State) {
		s.User.IsLoading = false
		s.User.Error = ""
		s.User.User = user
	}}
}

// UserLoggedIn отмечает успешный вход.
func UserLoggedIn() Action {
	return Action{Name: "user/logged-in", apply: func(s *State) {
		s.User.IsLoggedIn = true
	}}
}

// PhoneEntered сохраняет нормализованный номер телефона.
func PhoneEntered(phone string) Action {
	return Action{Name: "user/phone-entered", apply: func(s *State) {
		s.User.User.Phone = phone
	}}
}

// UserClosed сбрасывает пользователя к начальному состоянию (выход).
func UserClosed() Action {
	return Action{Name: "user/closed", apply: func(s *State) {
		s.User = UserState{}
	}}
}

// UserFailed сохраняет текст ошибки последнего запроса.
func UserFailed(msg string) Action {
	return Action{Name: "user/failed", apply: func(s *State) {
		s.User.IsLoading = false
		s.User.Error = msg
	}}
}
