package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/api/dto"
	"github.com/clubhouse-ops/membership-admin/internal/report"
	"github.com/clubhouse-ops/membership-admin/internal/service"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// ReportsHandler serves the dashboard, the report summary and CSV downloads.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Dashboard handles GET /api/dashboard.
func (h *ReportsHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.reports.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(dash)})
}

// Summary handles GET /api/reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSummaryResponse(summary)})
}

// PaymentsCSV handles GET /api/reports/payments.csv?status=.
func (h *ReportsHandler) PaymentsCSV(c *fiber.Ctx) error {
	filter, err := report.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return apperrors.NewValidationError("invalid status filter", map[string]any{"status": c.Query("status")})
	}
	export, err := h.reports.ExportPayments(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return sendCSV(c, export)
}

// ReportCSV handles GET /api/reports/payments/:type.csv.
func (h *ReportsHandler) ReportCSV(c *fiber.Ctx) error {
	kind := report.PaymentReport(strings.TrimSuffix(c.Params("type"), ".csv"))
	export, err := h.reports.ExportReport(c.UserContext(), kind)
	if err != nil {
		return err
	}
	return sendCSV(c, export)
}

// UsersCSV handles GET /api/reports/users.csv.
func (h *ReportsHandler) UsersCSV(c *fiber.Ctx) error {
	export, err := h.reports.ExportUsers(c.UserContext())
	if err != nil {
		return err
	}
	return sendCSV(c, export)
}

func sendCSV(c *fiber.Ctx, export *service.Export) error {
	c.Attachment(export.FileName)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(export.Data)
}
