package report

import (
	"fmt"
	"strings"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// StatusFilter selects rows by payment status; StatusAll keeps every row.
type StatusFilter string

const StatusAll StatusFilter = "all"

// ParseStatusFilter accepts "all", "paid", "unpaid" or "partial". Blank means all.
func ParseStatusFilter(raw string) (StatusFilter, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" || value == string(StatusAll) {
		return StatusAll, nil
	}
	if !domain.PaymentStatus(value).Valid() {
		return "", fmt.Errorf("unknown status filter %q", raw)
	}
	return StatusFilter(value), nil
}

// FilterByStatus keeps the rows whose status matches filter, preserving order.
// StatusAll returns rows unchanged.
func FilterByStatus[T any](rows []T, filter StatusFilter, status func(T) domain.PaymentStatus) []T {
	if filter == StatusAll || filter == "" {
		return rows
	}
	result := make([]T, 0, len(rows))
	for _, row := range rows {
		if string(status(row)) == string(filter) {
			result = append(result, row)
		}
	}
	return result
}

// FilterPayments is FilterByStatus for joined payment rows.
func FilterPayments(payments []domain.PaymentDetail, filter StatusFilter) []domain.PaymentDetail {
	return FilterByStatus(payments, filter, func(p domain.PaymentDetail) domain.PaymentStatus { return p.Status })
}

// FilterUsers is FilterByStatus for users carrying their aggregate status.
func FilterUsers(users []domain.UserWithStatus, filter StatusFilter) []domain.UserWithStatus {
	return FilterByStatus(users, filter, func(u domain.UserWithStatus) domain.PaymentStatus { return u.PaymentStatus })
}
