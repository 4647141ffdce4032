package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPlan is a named payment package with a fixed total amount and duration.
type PaymentPlan struct {
	ID             string
	Name           string
	Amount         decimal.Decimal
	DurationMonths int
	CreatedAt      time.Time
}
