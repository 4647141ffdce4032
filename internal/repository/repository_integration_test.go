package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/persistence"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("membership_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	// migrations are re-runnable
	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	return pool
}

func strPtr(s string) *string { return &s }

func TestPostgresRepositories(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	plans := repository.NewPlanRepository(pool)
	payments := repository.NewPaymentRepository(pool)
	operators := repository.NewOperatorRepository(pool)

	catalogue, err := plans.List(ctx)
	require.NoError(t, err)
	require.Len(t, catalogue, 4)
	assert.Equal(t, "Monthly", catalogue[0].Name)
	assert.Equal(t, "Annual", catalogue[3].Name)
	annual := catalogue[3]
	assert.True(t, decimal.NewFromInt(500).Equal(annual.Amount))

	ann := &domain.User{FullName: "Ann Lee", PhoneNumber: "555-0100", Email: strPtr("ann@example.com")}
	require.NoError(t, users.Create(ctx, ann))
	bo := &domain.User{FullName: "Bo_Smith", PhoneNumber: "777-0100"}
	require.NoError(t, users.Create(ctx, bo))

	listed, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, bo.ID, listed[0].ID)

	found, err := users.Search(ctx, "ANN@")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ann.ID, found[0].ID)

	// "_" is matched literally
	found, err = users.Search(ctx, "o_S")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bo.ID, found[0].ID)

	updated, err := users.Update(ctx, ann.ID, domain.UserPatch{Email: strPtr(""), Address: strPtr("1 Main St")})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "1 Main St", *updated.Address)

	_, err = users.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	paidAt := time.Now().UTC().Truncate(time.Second)
	payment := &domain.Payment{
		UserID:          ann.ID,
		PlanID:          annual.ID,
		AmountPaid:      decimal.RequireFromString("200.50"),
		AmountRemaining: decimal.RequireFromString("299.50"),
		Status:          domain.PaymentStatusPartial,
		PaymentDate:     &paidAt,
	}
	require.NoError(t, payments.Create(ctx, payment))

	details, err := payments.ListDetailedByUser(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Ann Lee", details[0].User.FullName)
	assert.Equal(t, "Annual", details[0].Plan.Name)
	assert.True(t, decimal.RequireFromString("200.5").Equal(details[0].AmountPaid))

	status := domain.PaymentStatusUnpaid
	zero := decimal.Zero
	cleared, err := payments.Update(ctx, payment.ID, domain.PaymentPatch{
		AmountPaid:       &zero,
		AmountRemaining:  &annual.Amount,
		Status:           &status,
		ClearPaymentDate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, cleared.Status)
	assert.Nil(t, cleared.PaymentDate)

	stats, err := payments.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStats{Total: 1, Unpaid: 1}, stats)

	byUser, err := payments.StatusesByUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PaymentStatus{domain.PaymentStatusUnpaid}, byUser[ann.ID])

	require.NoError(t, users.Delete(ctx, ann.ID))
	all, err := payments.ListDetailed(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, users.Delete(ctx, ann.ID), repository.ErrNotFound)

	op := &domain.Operator{Name: "Admin", Email: "Admin@Example.com", PasswordHash: "x", Role: domain.OperatorRoleAdmin, Active: true}
	require.NoError(t, operators.Create(ctx, op))
	got, err := operators.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)
	assert.Equal(t, domain.OperatorRoleAdmin, got.Role)
}
