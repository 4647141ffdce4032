package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/events"
	"github.com/clubhouse-ops/membership-admin/internal/paymentstatus"
	"github.com/clubhouse-ops/membership-admin/internal/report"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// PaymentService records payments and keeps their status consistent with
// the plan they were made against.
type PaymentService struct {
	payments repository.PaymentRepository
	plans    repository.PlanRepository
	cache    ReadCache
	events   publisher
	now      func() time.Time
}

// PaymentDependencies bundles collaborators for the payment service.
type PaymentDependencies struct {
	PaymentRepo repository.PaymentRepository
	PlanRepo    repository.PlanRepository
	Dispatcher  events.Dispatcher
	Cache       ReadCache
	Logger      *zap.Logger
	Clock       func() time.Time
}

// PaymentInput is the record payment form.
type PaymentInput struct {
	UserID     string
	PlanID     string
	AmountPaid decimal.Decimal
}

// PaymentUpdateInput carries the editable fields of a payment. Status,
// remaining amount and payment date are always derived, never supplied.
type PaymentUpdateInput struct {
	UserID     *string
	PlanID     *string
	AmountPaid *decimal.Decimal
}

// NewPaymentService constructs the service.
func NewPaymentService(deps PaymentDependencies) *PaymentService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &PaymentService{
		payments: deps.PaymentRepo,
		plans:    deps.PlanRepo,
		cache:    deps.Cache,
		events:   newPublisher(deps.Dispatcher, deps.Logger),
		now:      clock,
	}
}

// ListPlans returns the catalogue, shortest duration first.
func (s *PaymentService) ListPlans(ctx context.Context) ([]domain.PaymentPlan, error) {
	plans, err := fetch(ctx, s.cache, events.CollectionPlans, "list", s.plans.List)
	if err != nil {
		return nil, storeError("payment plan", err)
	}
	return nonNil(plans), nil
}

// List returns every payment joined with its user and plan, newest first.
func (s *PaymentService) List(ctx context.Context) ([]domain.PaymentDetail, error) {
	payments, err := fetch(ctx, s.cache, events.CollectionPayments, "list", s.payments.ListDetailed)
	if err != nil {
		return nil, storeError("payment", err)
	}
	return nonNil(payments), nil
}

// ListForUser returns one member's payments, newest first. An id that is
// not a UUID matches no member, so it returns nothing without a store call.
func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]domain.PaymentDetail, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []domain.PaymentDetail{}, nil
	}
	payments, err := fetch(ctx, s.cache, events.CollectionPayments, "user:"+userID,
		func(ctx context.Context) ([]domain.PaymentDetail, error) {
			return s.payments.ListDetailedByUser(ctx, userID)
		})
	if err != nil {
		return nil, storeError("payment", err)
	}
	return nonNil(payments), nil
}

// Filter returns the joined payments matching the status filter.
func (s *PaymentService) Filter(ctx context.Context, filter report.StatusFilter) ([]domain.PaymentDetail, error) {
	payments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return report.FilterPayments(payments, filter), nil
}

// Stats counts payments by status.
func (s *PaymentService) Stats(ctx context.Context) (domain.PaymentStats, error) {
	stats, err := fetch(ctx, s.cache, events.CollectionPayments, "stats", s.payments.CountByStatus)
	if err != nil {
		return domain.PaymentStats{}, storeError("payment", err)
	}
	return stats, nil
}

// Record validates the amount against the plan, derives the status and
// stores a new payment.
func (s *PaymentService) Record(ctx context.Context, actorID string, input PaymentInput) (*domain.Payment, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	input.PlanID = strings.TrimSpace(input.PlanID)
	details := map[string]any{}
	if input.UserID == "" {
		details["user_id"] = "required"
	}
	if input.PlanID == "" {
		details["plan_id"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("Please fill in all required fields", details)
	}

	plan, err := s.plan(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(plan.Amount, input.AmountPaid); err != nil {
		return nil, err
	}

	derived := paymentstatus.Derive(plan.Amount, input.AmountPaid)
	payment := &domain.Payment{
		UserID:          input.UserID,
		PlanID:          plan.ID,
		AmountPaid:      input.AmountPaid,
		AmountRemaining: derived.Remaining,
		Status:          derived.Status,
		PaymentDate:     paymentstatus.PaymentDate(derived.Status, s.now()),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, storeError("payment", err)
	}
	s.publishPayment(ctx, events.EventPaymentCreated, actorID, payment)
	return payment, nil
}

// Update edits a payment and re-derives its status. The payment date is
// reset to now unless the result is unpaid, in which case it is cleared.
func (s *PaymentService) Update(ctx context.Context, actorID, id string, input PaymentUpdateInput) (*domain.Payment, error) {
	current, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("payment", err)
	}

	planID := current.PlanID
	if input.PlanID != nil {
		planID = strings.TrimSpace(*input.PlanID)
	}
	amount := current.AmountPaid
	if input.AmountPaid != nil {
		amount = *input.AmountPaid
	}
	if input.UserID != nil && strings.TrimSpace(*input.UserID) == "" {
		return nil, apperrors.NewValidationError("Please fill in all required fields", map[string]any{"user_id": "required"})
	}
	if planID == "" {
		return nil, apperrors.NewValidationError("Please fill in all required fields", map[string]any{"plan_id": "required"})
	}

	plan, err := s.plan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := validateAmount(plan.Amount, amount); err != nil {
		return nil, err
	}

	derived := paymentstatus.Derive(plan.Amount, amount)
	patch := domain.PaymentPatch{
		PlanID:          &plan.ID,
		AmountPaid:      &amount,
		AmountRemaining: &derived.Remaining,
		Status:          &derived.Status,
	}
	if input.UserID != nil {
		userID := strings.TrimSpace(*input.UserID)
		patch.UserID = &userID
	}
	if date := paymentstatus.PaymentDate(derived.Status, s.now()); date != nil {
		patch.PaymentDate = date
	} else {
		patch.ClearPaymentDate = true
	}

	payment, err := s.payments.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("payment", err)
	}
	s.publishPayment(ctx, events.EventPaymentUpdated, actorID, payment)
	return payment, nil
}

func (s *PaymentService) plan(ctx context.Context, id string) (*domain.PaymentPlan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("Selected payment plan does not exist", map[string]any{"plan_id": id})
		}
		return nil, storeError("payment plan", err)
	}
	return plan, nil
}

func (s *PaymentService) publishPayment(ctx context.Context, eventType events.EventType, actorID string, payment *domain.Payment) {
	s.events.publish(ctx, events.Event{
		Type:       eventType,
		Collection: events.CollectionPayments,
		EntityID:   payment.ID,
		ActorID:    actorID,
		Payload: events.PaymentWrittenPayload{
			UserID:     payment.UserID,
			PlanID:     payment.PlanID,
			AmountPaid: payment.AmountPaid.String(),
			Status:     string(payment.Status),
		},
	})
}

func validateAmount(planAmount, amountPaid decimal.Decimal) error {
	err := paymentstatus.Validate(planAmount, amountPaid)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, paymentstatus.ErrAmountExceedsPlan):
		return apperrors.NewValidationError(
			fmt.Sprintf("Amount paid ($%s) cannot exceed plan amount ($%s)", amountPaid.String(), planAmount.String()),
			map[string]any{"amount_paid": amountPaid.String(), "plan_amount": planAmount.String()},
		)
	case errors.Is(err, paymentstatus.ErrNegativeAmount):
		return apperrors.NewValidationError("Amount paid cannot be negative", map[string]any{"amount_paid": amountPaid.String()})
	default:
		return apperrors.NewValidationError(err.Error(), map[string]any{"plan_amount": planAmount.String()})
	}
}
