package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the amount paid against the plan amount.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusUnpaid, PaymentStatusPartial:
		return true
	}
	return false
}

// Payment is one recorded payment attempt by a user against a plan.
type Payment struct {
	ID              string
	UserID          string
	PlanID          string
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal
	Status          PaymentStatus
	PaymentDate     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// PaymentPatch carries the fields of a partial payment update.
// ClearPaymentDate distinguishes "set to NULL" from "leave untouched".
type PaymentPatch struct {
	UserID           *string
	PlanID           *string
	AmountPaid       *decimal.Decimal
	AmountRemaining  *decimal.Decimal
	Status           *PaymentStatus
	PaymentDate      *time.Time
	ClearPaymentDate bool
}

// Apply copies the set fields of the patch onto the payment.
func (p PaymentPatch) Apply(pm *Payment) {
	if p.UserID != nil {
		pm.UserID = *p.UserID
	}
	if p.PlanID != nil {
		pm.PlanID = *p.PlanID
	}
	if p.AmountPaid != nil {
		pm.AmountPaid = *p.AmountPaid
	}
	if p.AmountRemaining != nil {
		pm.AmountRemaining = *p.AmountRemaining
	}
	if p.Status != nil {
		pm.Status = *p.Status
	}
	if p.ClearPaymentDate {
		pm.PaymentDate = nil
	} else if p.PaymentDate != nil {
		pm.PaymentDate = p.PaymentDate
	}
}

// UserSummary is the slice of a user embedded in joined payment reads.
type UserSummary struct {
	ID          string
	FullName    string
	PhoneNumber string
	Email       *string
}

// PlanSummary is the slice of a plan embedded in joined payment reads.
type PlanSummary struct {
	ID     string
	Name   string
	Amount decimal.Decimal
}

// PaymentDetail is a payment enriched with its owning user and plan.
type PaymentDetail struct {
	Payment
	User UserSummary
	Plan PlanSummary
}

// PaymentStats counts payment rows by status.
type PaymentStats struct {
	Total   int
	Paid    int
	Unpaid  int
	Partial int
}
