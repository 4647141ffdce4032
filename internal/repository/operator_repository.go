package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// OperatorRepository handles persistence for back-office accounts.
type OperatorRepository interface {
	Create(ctx context.Context, operator *domain.Operator) error
	GetByID(ctx context.Context, id string) (*domain.Operator, error)
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
}

type operatorRepository struct {
	db DBTX
}

// NewOperatorRepository instantiates the repository.
func NewOperatorRepository(db DBTX) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) Create(ctx context.Context, operator *domain.Operator) error {
	const query = `
        INSERT INTO operators (name, email, password_hash, role, active_flag)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		operator.Name,
		operator.Email,
		operator.PasswordHash,
		operator.Role,
		operator.Active,
	).Scan(&operator.ID, &operator.CreatedAt, &operator.UpdatedAt)
}

func (r *operatorRepository) GetByID(ctx context.Context, id string) (*domain.Operator, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM operators WHERE id=$1`
	return scanOperator(r.db.QueryRow(ctx, query, id))
}

func (r *operatorRepository) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	const query = `
        SELECT id, name, email, password_hash, role, active_flag, created_at, updated_at
        FROM operators WHERE LOWER(email)=LOWER($1)`
	return scanOperator(r.db.QueryRow(ctx, query, email))
}

func scanOperator(row pgx.Row) (*domain.Operator, error) {
	var operator domain.Operator
	if err := row.Scan(
		&operator.ID,
		&operator.Name,
		&operator.Email,
		&operator.PasswordHash,
		&operator.Role,
		&operator.Active,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &operator, nil
}
