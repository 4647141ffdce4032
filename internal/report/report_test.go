package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func detail(name string, status domain.PaymentStatus, paid string) domain.PaymentDetail {
	created := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)
	return domain.PaymentDetail{
		Payment: domain.Payment{
			ID:              name + "-payment",
			AmountPaid:      decimal.RequireFromString(paid),
			AmountRemaining: decimal.RequireFromString("500").Sub(decimal.RequireFromString(paid)),
			Status:          status,
			CreatedAt:       created,
		},
		User: domain.UserSummary{FullName: name, PhoneNumber: "555-0100"},
		Plan: domain.PlanSummary{Name: "Annual", Amount: decimal.RequireFromString("500")},
	}
}

func TestToCSVSinglePaymentRow(t *testing.T) {
	paidAt := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	row := detail("Ann Lee", domain.PaymentStatusPartial, "200")
	row.User.Email = ptr("ann@example.com")
	row.PaymentDate = &paidAt

	out, err := ToCSV([]domain.PaymentDetail{row}, PaymentColumns)
	require.NoError(t, err)

	expected := ByteOrderMark +
		"User Name,Phone Number,Email,Payment Plan,Plan Amount,Amount Paid,Amount Remaining,Status,Payment Date,Created Date\n" +
		`"Ann Lee","555-0100","ann@example.com","Annual",500,200,300,partial,"03/02/2024, 09:30:00","03/01/2024, 14:05:09"`
	assert.Equal(t, expected, string(out))
}

func TestToCSVEmptyOptionalFields(t *testing.T) {
	row := detail("Bo", domain.PaymentStatusUnpaid, "0")

	out, err := ToCSV([]domain.PaymentDetail{row}, PaymentColumns)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"Bo","555-0100","","Annual",500,0,500,unpaid,,"03/01/2024, 14:05:09"`)
}

func TestToCSVNoRows(t *testing.T) {
	out, err := ToCSV(nil, PaymentColumns)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, out)
}

func TestToCSVEscapesQuotes(t *testing.T) {
	user := domain.User{
		FullName:    `Jo "JJ" Smith`,
		PhoneNumber: "555, ext 2",
		Address:     ptr("1 Main St\nApt 4"),
		CreatedAt:   time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
	}

	out, err := ToCSV([]domain.User{user}, UserColumns)
	require.NoError(t, err)

	expected := ByteOrderMark +
		"Name,Phone Number,Email,Gender,Address,Registration Date\n" +
		`"Jo ""JJ"" Smith","555, ext 2","","","1 Main St` + "\n" + `Apt 4","12/31/2023, 23:59:59"`
	assert.Equal(t, expected, string(out))
}

func TestToCSVLineCount(t *testing.T) {
	rows := []domain.PaymentDetail{
		detail("a", domain.PaymentStatusPaid, "500"),
		detail("b", domain.PaymentStatusPaid, "500"),
		detail("c", domain.PaymentStatusUnpaid, "0"),
	}
	out, err := ToCSV(rows, PaymentColumns)
	require.NoError(t, err)
	assert.Equal(t, 3, countByte(out, '\n'))
}

func countByte(b []byte, c byte) int {
	n := 0
	for _, x := range b {
		if x == c {
			n++
		}
	}
	return n
}

func TestFilterPayments(t *testing.T) {
	rows := []domain.PaymentDetail{
		detail("a", domain.PaymentStatusPaid, "500"),
		detail("b", domain.PaymentStatusPartial, "100"),
		detail("c", domain.PaymentStatusPaid, "500"),
		detail("d", domain.PaymentStatusUnpaid, "0"),
	}

	t.Run("all is identity", func(t *testing.T) {
		assert.Equal(t, rows, FilterPayments(rows, StatusAll))
	})

	t.Run("keeps order", func(t *testing.T) {
		got := FilterPayments(rows, StatusFilter(domain.PaymentStatusPaid))
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].User.FullName)
		assert.Equal(t, "c", got[1].User.FullName)
	})

	t.Run("no match", func(t *testing.T) {
		got := FilterPayments(rows[:1], StatusFilter(domain.PaymentStatusUnpaid))
		assert.Empty(t, got)
	})
}

func TestFilterUsers(t *testing.T) {
	users := []domain.UserWithStatus{
		{User: domain.User{ID: "1"}, PaymentStatus: domain.PaymentStatusUnpaid},
		{User: domain.User{ID: "2"}, PaymentStatus: domain.PaymentStatusPaid},
	}
	got := FilterUsers(users, StatusFilter(domain.PaymentStatusPaid))
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestParseStatusFilter(t *testing.T) {
	for raw, want := range map[string]StatusFilter{
		"":         StatusAll,
		"all":      StatusAll,
		"PAID":     "paid",
		" partial": "partial",
		"unpaid":   "unpaid",
	} {
		got, err := ParseStatusFilter(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStatusFilter("overdue")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	rows := []domain.PaymentDetail{
		detail("a", domain.PaymentStatusPaid, "500"),
		detail("b", domain.PaymentStatusPartial, "100.50"),
		detail("c", domain.PaymentStatusUnpaid, "0"),
	}

	s := Summarize(7, rows)
	assert.Equal(t, 7, s.TotalUsers)
	assert.Equal(t, 3, s.TotalPayments)
	assert.Equal(t, 1, s.Paid)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 1, s.Unpaid)
	assert.True(t, decimal.RequireFromString("600.5").Equal(s.TotalAmount))
	assert.Equal(t, 33, s.CompletionRate)

	empty := Summarize(0, nil)
	assert.Equal(t, 0, empty.CompletionRate)
	assert.True(t, empty.TotalAmount.IsZero())
}

func TestSummarizeRoundsHalfUp(t *testing.T) {
	rows := []domain.PaymentDetail{
		detail("a", domain.PaymentStatusPaid, "500"),
		detail("b", domain.PaymentStatusUnpaid, "0"),
		detail("c", domain.PaymentStatusPaid, "500"),
		detail("d", domain.PaymentStatusPaid, "500"),
		detail("e", domain.PaymentStatusUnpaid, "0"),
		detail("f", domain.PaymentStatusUnpaid, "0"),
		detail("g", domain.PaymentStatusUnpaid, "0"),
		detail("h", domain.PaymentStatusUnpaid, "0"),
	}
	// 3/8 = 37.5%
	assert.Equal(t, 38, Summarize(1, rows).CompletionRate)
}

func TestReportNames(t *testing.T) {
	filter, err := ReportPaidUsers.Filter()
	require.NoError(t, err)
	assert.Equal(t, StatusFilter("paid"), filter)

	_, err = PaymentReport("everything").Filter()
	assert.Error(t, err)

	assert.Equal(t, "partial_payments.csv", FileName(FilteredPaymentsName("partial")))
	assert.Equal(t, "all_payments", FilteredPaymentsName(""))
	assert.Equal(t, "users_report.csv", FileName(UsersReportName))
}

func TestArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := Archive(dir, "paid_payments.csv", []byte("x"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
