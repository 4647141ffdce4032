package dto

import (
	"github.com/shopspring/decimal"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/report"
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// StatsResponse counts payments by status.
type StatsResponse struct {
	Total   int `json:"total"`
	Paid    int `json:"paid"`
	Unpaid  int `json:"unpaid"`
	Partial int `json:"partial"`
}

func newStatsResponse(s domain.PaymentStats) StatsResponse {
	return StatsResponse{Total: s.Total, Paid: s.Paid, Unpaid: s.Unpaid, Partial: s.Partial}
}

// DashboardResponse is the landing page summary.
type DashboardResponse struct {
	TotalUsers int           `json:"total_users"`
	Payments   StatsResponse `json:"payments"`
}

// NewDashboardResponse maps the dashboard view.
func NewDashboardResponse(d service.Dashboard) DashboardResponse {
	return DashboardResponse{TotalUsers: d.TotalUsers, Payments: newStatsResponse(d.Payments)}
}

// SummaryResponse is the reports page overview.
type SummaryResponse struct {
	TotalUsers     int             `json:"total_users"`
	TotalPayments  int             `json:"total_payments"`
	Paid           int             `json:"paid"`
	Unpaid         int             `json:"unpaid"`
	Partial        int             `json:"partial"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	CompletionRate int             `json:"completion_rate"`
}

// NewSummaryResponse maps a report summary.
func NewSummaryResponse(s report.Summary) SummaryResponse {
	return SummaryResponse{
		TotalUsers:     s.TotalUsers,
		TotalPayments:  s.TotalPayments,
		Paid:           s.Paid,
		Unpaid:         s.Unpaid,
		Partial:        s.Partial,
		TotalAmount:    s.TotalAmount,
		CompletionRate: s.CompletionRate,
	}
}
