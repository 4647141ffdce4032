package paymentstatus

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name      string
		plan      string
		paid      string
		remaining string
		status    domain.PaymentStatus
	}{
		{"fully paid", "500", "500", "0", domain.PaymentStatusPaid},
		{"partial", "500", "200", "300", domain.PaymentStatusPartial},
		{"nothing paid", "500", "0", "500", domain.PaymentStatusUnpaid},
		{"one cent short", "500", "499.99", "0.01", domain.PaymentStatusPartial},
		{"one cent paid", "500", "0.01", "499.99", domain.PaymentStatusPartial},
		{"overpaid clamps remaining", "500", "650", "0", domain.PaymentStatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(dec(tt.plan), dec(tt.paid))
			assert.True(t, got.Remaining.Equal(dec(tt.remaining)), "remaining = %s", got.Remaining)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestDerive_Idempotent(t *testing.T) {
	first := Derive(dec("120.50"), dec("60.25"))
	second := Derive(dec("120.50"), dec("60.25"))
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, first.Remaining.Equal(second.Remaining))
}

func TestDerive_RemainingIsPlanMinusPaidWithinBounds(t *testing.T) {
	plan := dec("300")
	for paid := int64(0); paid <= 300; paid += 25 {
		amount := decimal.NewFromInt(paid)
		got := Derive(plan, amount)
		assert.True(t, got.Remaining.Equal(plan.Sub(amount)))
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(dec("500"), dec("0")))
	assert.NoError(t, Validate(dec("500"), dec("500")))
	assert.ErrorIs(t, Validate(dec("500"), dec("500.01")), ErrAmountExceedsPlan)
	assert.ErrorIs(t, Validate(dec("500"), dec("-1")), ErrNegativeAmount)
	assert.ErrorIs(t, Validate(dec("0"), dec("0")), ErrInvalidPlanAmount)
}

func TestPaymentDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Nil(t, PaymentDate(domain.PaymentStatusUnpaid, now))

	got := PaymentDate(domain.PaymentStatusPartial, now)
	if assert.NotNil(t, got) {
		assert.True(t, got.Equal(now))
	}
	assert.NotNil(t, PaymentDate(domain.PaymentStatusPaid, now))
}

func TestAggregateUserStatus(t *testing.T) {
	assert.Equal(t, domain.PaymentStatusUnpaid, AggregateUserStatus(nil))
	assert.Equal(t, domain.PaymentStatusUnpaid, AggregateUserStatus([]domain.PaymentStatus{}))
	assert.Equal(t, domain.PaymentStatusPartial, AggregateUserStatus([]domain.PaymentStatus{
		domain.PaymentStatusPartial, domain.PaymentStatusUnpaid,
	}))
	assert.Equal(t, domain.PaymentStatusPaid, AggregateUserStatus([]domain.PaymentStatus{
		domain.PaymentStatusUnpaid, domain.PaymentStatusPaid, domain.PaymentStatusPartial,
	}))
	assert.Equal(t, domain.PaymentStatusUnpaid, AggregateUserStatus([]domain.PaymentStatus{
		domain.PaymentStatusUnpaid, domain.PaymentStatusUnpaid,
	}))
}

func TestAggregateUserStatus_OrderIndependent(t *testing.T) {
	statuses := []domain.PaymentStatus{domain.PaymentStatusUnpaid, domain.PaymentStatusPartial, domain.PaymentStatusPaid}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		in := []domain.PaymentStatus{statuses[p[0]], statuses[p[1]], statuses[p[2]]}
		assert.Equal(t, domain.PaymentStatusPaid, AggregateUserStatus(in))
	}
}
