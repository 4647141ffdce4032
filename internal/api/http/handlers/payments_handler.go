package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/api/dto"
	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/report"
	"github.com/clubhouse-ops/membership-admin/internal/service"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// PaymentsHandler records payments and lists plans.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Plans handles GET /api/plans.
func (h *PaymentsHandler) Plans(c *fiber.Ctx) error {
	plans, err := h.payments.ListPlans(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPlanResponses(plans)})
}

// List handles GET /api/payments?status=&user_id=.
func (h *PaymentsHandler) List(c *fiber.Ctx) error {
	filter, err := report.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return apperrors.NewValidationError("invalid status filter", map[string]any{"status": c.Query("status")})
	}

	var rows []domain.PaymentDetail
	if userID := c.Query("user_id"); userID != "" {
		rows, err = h.payments.ListForUser(c.UserContext(), userID)
		rows = report.FilterPayments(rows, filter)
	} else {
		rows, err = h.payments.Filter(c.UserContext(), filter)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPaymentDetailResponses(rows)})
}

// Create handles POST /api/payments.
func (h *PaymentsHandler) Create(c *fiber.Ctx) error {
	var req dto.PaymentCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if missing := req.Missing(); missing != nil {
		return apperrors.NewValidationError("Please fill in all required fields", missing)
	}

	payment, err := h.payments.Record(c.UserContext(), actorID(c), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"data":    dto.NewPaymentResponse(*payment),
	})
}

// Update handles PATCH /api/payments/:id.
func (h *PaymentsHandler) Update(c *fiber.Ctx) error {
	var req dto.PaymentUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	payment, err := h.payments.Update(c.UserContext(), actorID(c), c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Payment updated successfully",
		"data":    dto.NewPaymentResponse(*payment),
	})
}
