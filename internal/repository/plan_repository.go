package repository

import (
	"context"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// PlanRepository reads the payment plan reference data.
type PlanRepository interface {
	List(ctx context.Context) ([]domain.PaymentPlan, error)
	GetByID(ctx context.Context, id string) (*domain.PaymentPlan, error)
}

type planRepository struct {
	db DBTX
}

// NewPlanRepository returns a Postgres-backed implementation.
func NewPlanRepository(db DBTX) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) List(ctx context.Context) ([]domain.PaymentPlan, error) {
	const query = `
        SELECT id, name, amount, duration_months, created_at
        FROM payment_plans ORDER BY duration_months`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.PaymentPlan{}
	for rows.Next() {
		var plan domain.PaymentPlan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.Amount, &plan.DurationMonths, &plan.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

func (r *planRepository) GetByID(ctx context.Context, id string) (*domain.PaymentPlan, error) {
	const query = `
        SELECT id, name, amount, duration_months, created_at
        FROM payment_plans WHERE id=$1`

	var plan domain.PaymentPlan
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Amount,
		&plan.DurationMonths,
		&plan.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}
