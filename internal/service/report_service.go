package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/report"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// Export is a rendered CSV file ready for download.
type Export struct {
	FileName string
	Data     []byte
}

// Dashboard is the landing page summary.
type Dashboard struct {
	TotalUsers int
	Payments   domain.PaymentStats
}

// ReportService builds summaries and CSV exports from the user and payment services.
type ReportService struct {
	users     *UserService
	payments  *PaymentService
	exportDir string
	logger    *zap.Logger
}

// NewReportService constructs the service. When exportDir is set every
// export is also written there.
func NewReportService(users *UserService, payments *PaymentService, exportDir string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{users: users, payments: payments, exportDir: exportDir, logger: logger}
}

// Dashboard returns the member count and payment counts by status.
func (s *ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{TotalUsers: total, Payments: stats}, nil
}

// Summary returns the reports page overview.
func (s *ReportService) Summary(ctx context.Context) (report.Summary, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	payments, err := s.payments.List(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(total, payments), nil
}

// ExportPayments renders the payments matching filter.
func (s *ReportService) ExportPayments(ctx context.Context, filter report.StatusFilter) (*Export, error) {
	payments, err := s.payments.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.render(report.FilteredPaymentsName(filter), func() ([]byte, error) {
		return report.ToCSV(payments, report.PaymentColumns)
	})
}

// ExportReport renders one of the fixed payment reports.
func (s *ReportService) ExportReport(ctx context.Context, kind report.PaymentReport) (*Export, error) {
	filter, err := kind.Filter()
	if err != nil {
		return nil, apperrors.NewNotFound("report", map[string]any{"type": string(kind)})
	}
	payments, err := s.payments.Filter(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.render(string(kind), func() ([]byte, error) {
		return report.ToCSV(payments, report.PaymentColumns)
	})
}

// ExportUsers renders every registered member.
func (s *ReportService) ExportUsers(ctx context.Context) (*Export, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.render(report.UsersReportName, func() ([]byte, error) {
		return report.ToCSV(users, report.UserColumns)
	})
}

func (s *ReportService) render(name string, build func() ([]byte, error)) (*Export, error) {
	data, err := build()
	if err != nil {
		if errors.Is(err, report.ErrNoData) {
			return nil, apperrors.NewNoData("There is no data available to export.")
		}
		return nil, apperrors.NewInternalError(err)
	}

	export := &Export{FileName: report.FileName(name), Data: data}
	if s.exportDir != "" {
		path, err := report.Archive(s.exportDir, export.FileName, data)
		if err != nil {
			s.logger.Warn("archive export failed", zap.String("file", export.FileName), zap.Error(err))
		} else {
			s.logger.Info("export archived", zap.String("path", path), zap.Int("bytes", len(data)))
		}
	}
	return export, nil
}
