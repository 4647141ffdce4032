package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// PaymentRepository encapsulates payment persistence.
type PaymentRepository interface {
	ListDetailed(ctx context.Context) ([]domain.PaymentDetail, error)
	ListDetailedByUser(ctx context.Context, userID string) ([]domain.PaymentDetail, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error)
	CountByStatus(ctx context.Context) (domain.PaymentStats, error)
	StatusesByUser(ctx context.Context) (map[string][]domain.PaymentStatus, error)
}

type paymentRepository struct {
	db DBTX
}

// NewPaymentRepository returns a Postgres-backed implementation.
func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, user_id, plan_id, amount_paid, amount_remaining, status, payment_date, created_at, updated_at`

const paymentDetailQuery = `
        SELECT p.id, p.user_id, p.plan_id, p.amount_paid, p.amount_remaining, p.status,
               p.payment_date, p.created_at, p.updated_at,
               u.id, u.full_name, u.phone_number, u.email,
               pp.id, pp.name, pp.amount
        FROM payments p
        JOIN users u ON u.id = p.user_id
        JOIN payment_plans pp ON pp.id = p.plan_id`

func (r *paymentRepository) ListDetailed(ctx context.Context) ([]domain.PaymentDetail, error) {
	rows, err := r.db.Query(ctx, paymentDetailQuery+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaymentDetails(rows)
}

func (r *paymentRepository) ListDetailedByUser(ctx context.Context, userID string) ([]domain.PaymentDetail, error) {
	rows, err := r.db.Query(ctx, paymentDetailQuery+` WHERE p.user_id=$1 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaymentDetails(rows)
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (user_id, plan_id, amount_paid, amount_remaining, status, payment_date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		payment.UserID,
		payment.PlanID,
		payment.AmountPaid,
		payment.AmountRemaining,
		payment.Status,
		payment.PaymentDate,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if patch.UserID != nil {
		add("user_id", *patch.UserID)
	}
	if patch.PlanID != nil {
		add("plan_id", *patch.PlanID)
	}
	if patch.AmountPaid != nil {
		add("amount_paid", *patch.AmountPaid)
	}
	if patch.AmountRemaining != nil {
		add("amount_remaining", *patch.AmountRemaining)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.ClearPaymentDate {
		sets = append(sets, "payment_date=NULL")
	} else if patch.PaymentDate != nil {
		add("payment_date", *patch.PaymentDate)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE payments SET %s, updated_at=NOW() WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), paymentColumns)

	payment, err := scanPayment(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return payment, nil
}

func (r *paymentRepository) CountByStatus(ctx context.Context) (domain.PaymentStats, error) {
	var stats domain.PaymentStats

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM payments GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status domain.PaymentStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		stats.Total += count
		switch status {
		case domain.PaymentStatusPaid:
			stats.Paid = count
		case domain.PaymentStatusUnpaid:
			stats.Unpaid = count
		case domain.PaymentStatusPartial:
			stats.Partial = count
		}
	}
	return stats, rows.Err()
}

func (r *paymentRepository) StatusesByUser(ctx context.Context) (map[string][]domain.PaymentStatus, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, status FROM payments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.PaymentStatus)
	for rows.Next() {
		var (
			userID string
			status domain.PaymentStatus
		)
		if err := rows.Scan(&userID, &status); err != nil {
			return nil, err
		}
		result[userID] = append(result[userID], status)
	}
	return result, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.UserID,
		&payment.PlanID,
		&payment.AmountPaid,
		&payment.AmountRemaining,
		&payment.Status,
		&payment.PaymentDate,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}

func scanPaymentDetails(rows pgx.Rows) ([]domain.PaymentDetail, error) {
	result := []domain.PaymentDetail{}
	for rows.Next() {
		var d domain.PaymentDetail
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.PlanID,
			&d.AmountPaid,
			&d.AmountRemaining,
			&d.Status,
			&d.PaymentDate,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.User.ID,
			&d.User.FullName,
			&d.User.PhoneNumber,
			&d.User.Email,
			&d.Plan.ID,
			&d.Plan.Name,
			&d.Plan.Amount,
		); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
