package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/lib/money"
	"github.com/popodpiske/checkout-gateway/internal/lib/validate"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
	"github.com/popodpiske/checkout-gateway/internal/models"
	"github.com/popodpiske/checkout-gateway/internal/schedule"
	"github.com/popodpiske/checkout-gateway/internal/session"
)

// PersonalInfo данные формы «Личные данные» и выбранный срок.
type PersonalInfo struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	IIN            string
	NumberOfMonths int
}

// LinkView курс по платёжной ссылке.
type LinkView struct {
	UUID       string          `json:"uuid"`
	CourseName string          `json:"courseName"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalText  string          `json:"totalText"`
	Options    []int           `json:"options"`
}

// Confirmation экран подтверждения перед оплатой.
type Confirmation struct {
	FirstPaymentDate string          `json:"firstPaymentDate"`
	CourseName       string          `json:"courseName"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	TotalText        string          `json:"totalText"`
	NumberOfMonths   int             `json:"numberOfMonths"`
	MonthlyPayment   decimal.Decimal `json:"monthlyPayment"`
	MonthlyText      string          `json:"monthlyText"`
	Schedule         schedule.Steps  `json:"schedule"`
	CanPay           bool            `json:"canPay"`
}

// ResolveLink проверяет платёжную ссылку и запоминает курс в сессии.
func (s *Service) ResolveLink(ctx context.Context, sessionID, linkUUID string) (*LinkView, error) {
	const op = "checkout.ResolveLink"

	linkUUID = strings.TrimSpace(linkUUID)
	if linkUUID == "" {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrEmptyLink))
	}

	link, err := s.api.ValidateLink(ctx, linkUUID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}

	st, err := s.sessions.Dispatch(ctx, sessionID, session.CourseSelected(linkUUID, *link))
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}

	plan, err := BuildPlan(st.Course, 0)
	options := plan.Options
	if err != nil {
		options = []int{}
	}
	return &LinkView{
		UUID:       linkUUID,
		CourseName: link.Course.CourseName,
		TotalPrice: link.Course.TotalPrice,
		TotalText:  money.Format(link.Course.TotalPrice),
		Options:    options,
	}, nil
}

// PreviewPlan считает план для срока months без изменения сессии.
func (s *Service) PreviewPlan(ctx context.Context, sessionID string, months int) (*Plan, error) {
	const op = "checkout.PreviewPlan"

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if !st.HasCourse() {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrNoCourse))
	}
	plan, err := BuildPlan(st.Course, months)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, err)
	}
	return &plan, nil
}

// SubmitPersonalInfo сохраняет выбранный план и, если пользователь ещё не вошёл, его данные.
// ИИН проверяется, только если у пользователя сессии его ещё нет.
func (s *Service) SubmitPersonalInfo(ctx context.Context, sessionID string, info PersonalInfo) (*Plan, error) {
	const op = "checkout.SubmitPersonalInfo"

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if !st.HasCourse() {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrNoCourse))
	}

	phone := validate.NormalizePhone(info.Phone)
	if !validate.Phone(phone) {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrInvalidPhone))
	}
	if st.User.User.IIN == "" && !validate.IIN(info.IIN, validate.Now()) {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrInvalidIIN))
	}

	plan, err := BuildPlan(st.Course, info.NumberOfMonths)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, err)
	}

	loggedIn, err := s.isLoggedIn(ctx, st)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}

	actions := []session.Action{session.PlanChosen(plan.NumberOfMonths, plan.MonthlyPayment, plan.DueDate)}
	if !loggedIn {
		actions = append(actions, session.UserCreated(models.User{
			FirstName: strings.TrimSpace(info.FirstName),
			LastName:  strings.TrimSpace(info.LastName),
			Phone:     phone,
			IIN:       info.IIN,
			Email:     strings.TrimSpace(info.Email),
		}))
	}
	if _, err := s.sessions.Dispatch(ctx, sessionID, actions...); err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	return &plan, nil
}

// Confirmation собирает экран подтверждения: первый платёж сегодня, график от сегодняшней даты.
func (s *Service) Confirmation(ctx context.Context, sessionID string) (*Confirmation, error) {
	const op = "checkout.Confirmation"

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, err))
	}
	if !st.HasCourse() {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrNoCourse))
	}
	if st.Course.NumberOfMonths < 1 {
		return nil, s.fail(ctx, sessionID, op, fallbackGeneric, fmt.Errorf("%s: %w", op, ErrNoPlan))
	}

	const currentMonthIndex = 0
	today := billing.Today()
	steps := schedule.RenderSchedule(today, st.Course.NumberOfMonths, st.Course.MonthlyPayment, currentMonthIndex, s.threshold)
	metrics.IncScheduleBuilt(string(steps.Mode))

	return &Confirmation{
		FirstPaymentDate: billing.FormatDisplay(today),
		CourseName:       st.Course.CourseName,
		TotalPrice:       st.Course.TotalPrice,
		TotalText:        money.Format(st.Course.TotalPrice),
		NumberOfMonths:   st.Course.NumberOfMonths,
		MonthlyPayment:   st.Course.MonthlyPayment,
		MonthlyText:      money.Format(st.Course.MonthlyPayment),
		Schedule:         steps,
		CanPay:           currentMonthIndex < st.Course.NumberOfMonths,
	}, nil
}

// CreateOrder создаёт заказ по выбранному плану, очищает курс в сессии и возвращает ссылку на оплату.
func (s *Service) CreateOrder(ctx context.Context, sessionID string) (*models.PaymentURLResponse, error) {
	const op = "checkout.CreateOrder"

	st, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackCreateOrder, fmt.Errorf("%s: %w", op, err))
	}
	if !st.HasCourse() {
		return nil, s.fail(ctx, sessionID, op, fallbackCreateOrder, fmt.Errorf("%s: %w", op, ErrNoCourse))
	}
	if st.Course.NumberOfMonths < 1 {
		return nil, s.fail(ctx, sessionID, op, fallbackCreateOrder, fmt.Errorf("%s: %w", op, ErrNoPlan))
	}

	resp, err := s.api.CreateOrder(ctx, models.CreateOrderRequest{
		NumberOfMonths: st.Course.NumberOfMonths,
		MonthlyPrice:   st.Course.MonthlyPayment,
		LinkUUID:       st.Course.PaymentLink,
	})
	if err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackCreateOrder, fmt.Errorf("%s: %w", op, err))
	}
	metrics.IncOrderCreated()
	s.invalidateOrders(ctx, sessionID)

	if _, err := s.sessions.Dispatch(ctx, sessionID, session.ClearCourse()); err != nil {
		return nil, s.fail(ctx, sessionID, op, fallbackCreateOrder, fmt.Errorf("%s: %w", op, err))
	}
	return resp, nil
}

// ConfirmSuccess подтверждает успешную оплату заказа, сбрасывает кэш заказов и очищает курс в сессии.
// Если передан linkUUID, ссылка помечается использованной.
func (s *Service) ConfirmSuccess(ctx context.Context, sessionID string, orderID int, linkUUID string) error {
	const op = "checkout.ConfirmSuccess"

	if err := s.api.ConfirmSuccess(ctx, orderID); err != nil {
		return s.fail(ctx, sessionID, op, fallbackConfirmation, fmt.Errorf("%s: %w", op, err))
	}
	if linkUUID = strings.TrimSpace(linkUUID); linkUUID != "" {
		if err := s.api.MarkLinkUsed(ctx, linkUUID); err != nil {
			return s.fail(ctx, sessionID, op, fallbackConfirmation, fmt.Errorf("%s: %w", op, err))
		}
	}
	s.invalidateOrders(ctx, sessionID)
	if _, err := s.sessions.Dispatch(ctx, sessionID, session.ClearCourse()); err != nil {
		return s.fail(ctx, sessionID, op, fallbackConfirmation, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}
