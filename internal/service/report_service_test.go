package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhouse-ops/membership-admin/internal/report"
)

func TestReportService_ExportWithoutRowsIsNoData(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports.ExportPayments(context.Background(), report.StatusAll)
	assert.Equal(t, "NO_DATA", domainCode(t, err))

	_, err = f.reports.ExportUsers(context.Background())
	assert.Equal(t, "NO_DATA", domainCode(t, err))
}

func TestReportService_ExportPaymentsFiltered(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ann", "555")
	f.pay(t, user.ID, "Annual", "500")
	f.pay(t, user.ID, "Annual", "100")

	export, err := f.reports.ExportPayments(context.Background(), "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid_payments.csv", export.FileName)

	lines := strings.Split(string(export.Data), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], report.ByteOrderMark+"User Name,"))
	assert.Contains(t, lines[1], `"Ann","555","","Annual",500,500,0,paid,`)

	_, err = f.reports.ExportPayments(context.Background(), "unpaid")
	assert.Equal(t, "NO_DATA", domainCode(t, err))
}

func TestReportService_ExportReport(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "Ann", "555")
	f.pay(t, user.ID, "Monthly", "20")

	export, err := f.reports.ExportReport(context.Background(), report.ReportPartialPayments)
	require.NoError(t, err)
	assert.Equal(t, "partial_payments.csv", export.FileName)

	_, err = f.reports.ExportReport(context.Background(), report.PaymentReport("bogus"))
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestReportService_ExportUsersArchives(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	f.reports = NewReportService(f.users, f.payments, dir, nil)
	f.register(t, "Ann", "555")

	export, err := f.reports.ExportUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "users_report.csv", export.FileName)

	archived, err := os.ReadFile(filepath.Join(dir, "users_report.csv"))
	require.NoError(t, err)
	assert.Equal(t, export.Data, archived)
}

func TestReportService_SummaryAndDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "Ann", "1")
	f.register(t, "Bo", "2")
	f.pay(t, ann.ID, "Annual", "500")
	f.pay(t, ann.ID, "Monthly", "25")
	f.pay(t, ann.ID, "Monthly", "0")

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalUsers)
	assert.Equal(t, 3, summary.TotalPayments)
	assert.Equal(t, "525", summary.TotalAmount.String())
	assert.Equal(t, 33, summary.CompletionRate)

	dash, err := f.reports.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalUsers)
	assert.Equal(t, 3, dash.Payments.Total)
	assert.Equal(t, 1, dash.Payments.Paid)
}
