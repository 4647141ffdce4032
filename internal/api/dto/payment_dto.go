package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// PaymentCreateRequest is the record payment form. Amounts accept JSON
// numbers or numeric strings.
type PaymentCreateRequest struct {
	UserID     string           `json:"user_id" validate:"required"`
	PlanID     string           `json:"plan_id" validate:"required"`
	AmountPaid *decimal.Decimal `json:"amount_paid"`
}

// Missing reports required fields the validator cannot see.
func (r PaymentCreateRequest) Missing() map[string]any {
	if r.AmountPaid == nil {
		return map[string]any{"amount_paid": "This field is required"}
	}
	return nil
}

// ToInput converts the request for the service.
func (r PaymentCreateRequest) ToInput() service.PaymentInput {
	input := service.PaymentInput{UserID: r.UserID, PlanID: r.PlanID}
	if r.AmountPaid != nil {
		input.AmountPaid = *r.AmountPaid
	}
	return input
}

// PaymentUpdateRequest edits a payment; status and balances are re-derived.
type PaymentUpdateRequest struct {
	UserID     *string          `json:"user_id"`
	PlanID     *string          `json:"plan_id"`
	AmountPaid *decimal.Decimal `json:"amount_paid"`
}

// ToInput converts the request for the service.
func (r PaymentUpdateRequest) ToInput() service.PaymentUpdateInput {
	return service.PaymentUpdateInput{UserID: r.UserID, PlanID: r.PlanID, AmountPaid: r.AmountPaid}
}

// PaymentUserResponse is the user slice embedded in payment listings.
type PaymentUserResponse struct {
	ID          string  `json:"id"`
	FullName    string  `json:"full_name"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email"`
}

// PaymentPlanSummaryResponse is the plan slice embedded in payment listings.
type PaymentPlanSummaryResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentResponse is the public view of a payment.
type PaymentResponse struct {
	ID              string                      `json:"id"`
	UserID          string                      `json:"user_id"`
	PlanID          string                      `json:"plan_id"`
	AmountPaid      decimal.Decimal             `json:"amount_paid"`
	AmountRemaining decimal.Decimal             `json:"amount_remaining"`
	Status          domain.PaymentStatus        `json:"status"`
	PaymentDate     *time.Time                  `json:"payment_date"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
	User            *PaymentUserResponse        `json:"users,omitempty"`
	Plan            *PaymentPlanSummaryResponse `json:"payment_plans,omitempty"`
}

// NewPaymentResponse maps a bare payment.
func NewPaymentResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		UserID:          p.UserID,
		PlanID:          p.PlanID,
		AmountPaid:      p.AmountPaid,
		AmountRemaining: p.AmountRemaining,
		Status:          p.Status,
		PaymentDate:     p.PaymentDate,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewPaymentDetailResponses maps joined payment rows.
func NewPaymentDetailResponses(rows []domain.PaymentDetail) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, row := range rows {
		resp := NewPaymentResponse(row.Payment)
		resp.User = &PaymentUserResponse{
			ID:          row.User.ID,
			FullName:    row.User.FullName,
			PhoneNumber: row.User.PhoneNumber,
			Email:       row.User.Email,
		}
		resp.Plan = &PaymentPlanSummaryResponse{ID: row.Plan.ID, Name: row.Plan.Name, Amount: row.Plan.Amount}
		out = append(out, resp)
	}
	return out
}

// PlanResponse is the public view of a payment plan.
type PlanResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	DurationMonths int             `json:"duration_months"`
	CreatedAt      time.Time       `json:"created_at"`
}

// NewPlanResponses maps the plan catalogue.
func NewPlanResponses(plans []domain.PaymentPlan) []PlanResponse {
	out := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanResponse{
			ID:             p.ID,
			Name:           p.Name,
			Amount:         p.Amount,
			DurationMonths: p.DurationMonths,
			CreatedAt:      p.CreatedAt,
		})
	}
	return out
}
