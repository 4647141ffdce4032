// Package paymentstatus derives payment status and remaining balance from
// the amount paid against a plan, and reduces per-row statuses into a single
// status per user.
package paymentstatus

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

var (
	ErrInvalidPlanAmount = errors.New("plan amount must be positive")
	ErrNegativeAmount    = errors.New("amount paid cannot be negative")
	ErrAmountExceedsPlan = errors.New("amount paid cannot exceed plan amount")
)

// Derivation is the result of comparing an amount paid with a plan amount.
type Derivation struct {
	Remaining decimal.Decimal
	Status    domain.PaymentStatus
}

// Validate checks the inputs accepted at the form boundary before Derive is called.
func Validate(planAmount, amountPaid decimal.Decimal) error {
	if !planAmount.IsPositive() {
		return ErrInvalidPlanAmount
	}
	if amountPaid.IsNegative() {
		return ErrNegativeAmount
	}
	if amountPaid.GreaterThan(planAmount) {
		return ErrAmountExceedsPlan
	}
	return nil
}

// Derive computes the remaining balance and status. Remaining never goes below zero.
func Derive(planAmount, amountPaid decimal.Decimal) Derivation {
	remaining := planAmount.Sub(amountPaid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	status := domain.PaymentStatusUnpaid
	switch {
	case amountPaid.GreaterThanOrEqual(planAmount):
		status = domain.PaymentStatusPaid
	case amountPaid.IsPositive():
		status = domain.PaymentStatusPartial
	}

	return Derivation{Remaining: remaining, Status: status}
}

// PaymentDate returns now for any settled or partially settled payment, nil otherwise.
func PaymentDate(status domain.PaymentStatus, now time.Time) *time.Time {
	if status == domain.PaymentStatusUnpaid {
		return nil
	}
	return &now
}

// Rank orders statuses paid > partial > unpaid. Unknown statuses rank lowest.
func Rank(status domain.PaymentStatus) int {
	switch status {
	case domain.PaymentStatusPaid:
		return 2
	case domain.PaymentStatusPartial:
		return 1
	default:
		return 0
	}
}

// AggregateUserStatus reduces the statuses of all of a user's payments to the
// highest ranked one. A user with no payments is unpaid.
func AggregateUserStatus(statuses []domain.PaymentStatus) domain.PaymentStatus {
	result := domain.PaymentStatusUnpaid
	for _, s := range statuses {
		if Rank(s) > Rank(result) {
			result = s
		}
	}
	return result
}
