package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popodpiske/checkout-gateway/internal/lib/billing"
	"github.com/popodpiske/checkout-gateway/internal/models"
)

func strPtr(s string) *string { return &s }

func fixNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := billing.Now
	billing.Now = func() time.Time { return now }
	t.Cleanup(func() { billing.Now = prev })
}

func recorded(id int, date string, status models.PaymentStatus) models.Payment {
	return models.Payment{
		ID:          id,
		Amount:      decimal.NewFromInt(20000),
		Currency:    "KZT",
		Status:      status,
		PaymentDate: date,
	}
}

func TestBuildSchedule_AlwaysReturnsNumberOfMonthsSlots(t *testing.T) {
	const months = 6
	all := []models.Payment{
		recorded(11, "2025-01-10", models.PaymentSuccess),
		recorded(12, "2025-02-10", models.PaymentSuccess),
		recorded(13, "2025-03-10", models.PaymentFailure),
		recorded(14, "2025-04-10", models.PaymentSuccess),
		recorded(15, "2025-05-10", models.PaymentSuccess),
		recorded(16, "2025-06-10", models.PaymentSuccess),
	}

	for n := 0; n <= months; n++ {
		order := models.Order{
			ID:              1,
			NumberOfMonths:  months,
			MonthlyPrice:    decimal.NewFromInt(20000),
			NextBillingDate: strPtr("2025-07-10"),
			Status:          models.OrderActive,
			Payments:        all[:n],
		}
		got, err := BuildSchedule(order)
		require.NoError(t, err)
		assert.Len(t, got, months, "recorded payments: %d", n)
	}
}

func TestBuildSchedule_PendingWithoutAnchorIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		next *string
	}{
		{name: "nil", next: nil},
		{name: "empty", next: strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := models.Order{
				NumberOfMonths:  3,
				MonthlyPrice:    decimal.NewFromInt(1000),
				NextBillingDate: tt.next,
				Status:          models.OrderPending,
			}
			got, err := BuildSchedule(order)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestBuildSchedule_ProjectsFromCursor(t *testing.T) {
	order := models.Order{
		ID:              3,
		NumberOfMonths:  4,
		MonthlyPrice:    decimal.RequireFromString("15000.50"),
		NextBillingDate: strPtr("2025-01-31"),
		Status:          models.OrderActive,
		Payments: []models.Payment{
			recorded(2, "2024-12-31", models.PaymentSuccess),
		},
	}

	got, err := BuildSchedule(order)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, order.Payments[0], got[0])

	wantDates := []string{"2025-01-31", "2025-03-01", "2025-04-01"}
	for i, want := range wantDates {
		p := got[i+1]
		assert.True(t, p.IsProjected())
		assert.Equal(t, want, p.PaymentDate)
		assert.Equal(t, "KZT", p.Currency)
		assert.Equal(t, models.PaymentPending, p.Status)
		assert.True(t, order.MonthlyPrice.Equal(p.Amount))
	}
}

func TestBuildSchedule_SortsRecordedPayments(t *testing.T) {
	order := models.Order{
		NumberOfMonths:  3,
		MonthlyPrice:    decimal.NewFromInt(100),
		NextBillingDate: strPtr("2025-03-10"),
		Status:          models.OrderActive,
		Payments: []models.Payment{
			recorded(21, "2025-02-10T09:00:00Z", models.PaymentSuccess),
			recorded(20, "2025-01-10", models.PaymentFailure),
		},
	}
	before := append([]models.Payment(nil), order.Payments...)

	got, err := BuildSchedule(order)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 20, got[0].ID)
	assert.Equal(t, 21, got[1].ID)
	assert.Equal(t, "2025-03-10", got[2].PaymentDate)
	assert.Equal(t, before, order.Payments, "input payments must not be reordered")
}

func TestBuildSchedule_ProjectedStatus(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		want   models.PaymentStatus
	}{
		{status: models.OrderActive, want: models.PaymentPending},
		{status: models.OrderPastDue, want: models.PaymentPending},
		{status: models.OrderCompleted, want: models.PaymentPending},
		{status: models.OrderPending, want: models.PaymentPending},
		{status: models.OrderCancelled, want: models.PaymentCancel},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			order := models.Order{
				NumberOfMonths:  5,
				MonthlyPrice:    decimal.NewFromInt(400),
				NextBillingDate: strPtr("2025-05-05"),
				Status:          tt.status,
				Payments:        []models.Payment{recorded(1, "2025-04-05", models.PaymentSuccess)},
			}
			got, err := BuildSchedule(order)
			require.NoError(t, err)
			for _, p := range got {
				if !p.IsProjected() {
					continue
				}
				assert.Equal(t, tt.want, p.Status)
				assert.NotEqual(t, models.PaymentSuccess, p.Status)
				assert.NotEqual(t, models.PaymentFailure, p.Status)
			}
		})
	}
}

func TestBuildSchedule_NoAnchorOnActiveOrderStartsToday(t *testing.T) {
	fixNow(t, time.Date(2025, 8, 20, 15, 0, 0, 0, time.UTC))

	order := models.Order{
		NumberOfMonths: 2,
		MonthlyPrice:   decimal.NewFromInt(100),
		Status:         models.OrderCancelled,
	}
	got, err := BuildSchedule(order)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-08-20", got[0].PaymentDate)
	assert.Equal(t, "2025-09-20", got[1].PaymentDate)
	assert.Equal(t, models.PaymentCancel, got[0].Status)
}

func TestBuildSchedule_TruncatesExtraRecordedPayments(t *testing.T) {
	order := models.Order{
		NumberOfMonths:  1,
		NextBillingDate: strPtr("2025-03-10"),
		Status:          models.OrderCompleted,
		Payments: []models.Payment{
			recorded(1, "2025-01-10", models.PaymentFailure),
			recorded(2, "2025-01-12", models.PaymentSuccess),
		},
	}
	got, err := BuildSchedule(order)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestBuildSchedule_InvalidAnchor(t *testing.T) {
	order := models.Order{
		ID:              9,
		NumberOfMonths:  2,
		NextBillingDate: strPtr("not-a-date"),
		Status:          models.OrderActive,
	}
	_, err := BuildSchedule(order)
	assert.ErrorIs(t, err, billing.ErrInvalidDate)
}

func TestSortedPayments_UnparsableFirst(t *testing.T) {
	in := []models.Payment{
		recorded(1, "2025-02-01", models.PaymentSuccess),
		recorded(2, "garbage", models.PaymentFailure),
		recorded(3, "2025-01-01", models.PaymentSuccess),
		recorded(4, "", models.PaymentFailure),
	}
	got, invalid := sortedPayments(in)

	ids := make([]int, len(got))
	for i, p := range got {
		ids[i] = p.ID
	}
	assert.Equal(t, []int{2, 4, 3, 1}, ids)
	assert.Equal(t, 2, invalid)
	assert.Equal(t, 2, UnparsableDates(in))
	assert.Zero(t, UnparsableDates(in[:1]))
}
