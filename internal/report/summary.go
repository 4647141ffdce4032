package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// Summary is the headline view of the reports page.
type Summary struct {
	TotalUsers     int
	TotalPayments  int
	Paid           int
	Unpaid         int
	Partial        int
	TotalAmount    decimal.Decimal
	CompletionRate int
}

// Summarize counts payments by status, sums the amounts paid and computes the
// share of paid rows as a rounded percentage (0 when there are no payments).
func Summarize(totalUsers int, payments []domain.PaymentDetail) Summary {
	s := Summary{TotalUsers: totalUsers, TotalPayments: len(payments), TotalAmount: decimal.Zero}
	for _, p := range payments {
		s.TotalAmount = s.TotalAmount.Add(p.AmountPaid)
		switch p.Status {
		case domain.PaymentStatusPaid:
			s.Paid++
		case domain.PaymentStatusUnpaid:
			s.Unpaid++
		case domain.PaymentStatusPartial:
			s.Partial++
		}
	}
	if s.TotalPayments > 0 {
		rate := decimal.NewFromInt(int64(s.Paid) * 100).Div(decimal.NewFromInt(int64(s.TotalPayments))).Round(0)
		s.CompletionRate = int(rate.IntPart())
	}
	return s
}

// PaymentReport is one of the fixed payment exports.
type PaymentReport string

const (
	ReportAllPayments     PaymentReport = "all_payments"
	ReportPaidUsers       PaymentReport = "paid_users"
	ReportUnpaidUsers     PaymentReport = "unpaid_users"
	ReportPartialPayments PaymentReport = "partial_payments"
)

// UsersReportName is the base file name of the member export.
const UsersReportName = "users_report"

// Filter returns the status filter a fixed report applies.
func (r PaymentReport) Filter() (StatusFilter, error) {
	switch r {
	case ReportAllPayments:
		return StatusAll, nil
	case ReportPaidUsers:
		return StatusFilter(domain.PaymentStatusPaid), nil
	case ReportUnpaidUsers:
		return StatusFilter(domain.PaymentStatusUnpaid), nil
	case ReportPartialPayments:
		return StatusFilter(domain.PaymentStatusPartial), nil
	}
	return "", fmt.Errorf("unknown report %q", string(r))
}

// FilteredPaymentsName is the base file name of a status-filtered export,
// e.g. "paid_payments" or "all_payments".
func FilteredPaymentsName(filter StatusFilter) string {
	if filter == "" {
		filter = StatusAll
	}
	return string(filter) + "_payments"
}

// FileName appends the .csv extension.
func FileName(base string) string {
	return base + ".csv"
}

// Archive writes an export to dir and returns the written path.
func Archive(dir, fileName string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
