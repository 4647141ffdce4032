// Package memory is an in-process implementation of the repository
// interfaces. It backs local runs without a database and the service and
// handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
)

// Store holds every table in memory. Deleting a user cascades to their payments.
type Store struct {
	mu        sync.RWMutex
	now       func() time.Time
	seq       int64
	calls     int
	failErr   error
	users     map[string]*userRow
	plans     map[string]domain.PaymentPlan
	payments  map[string]*paymentRow
	operators map[string]domain.Operator
}

type userRow struct {
	domain.User
	seq int64
}

type paymentRow struct {
	domain.Payment
	seq int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPlans replaces the seeded plans.
func WithPlans(plans ...domain.PaymentPlan) Option {
	return func(s *Store) {
		s.plans = make(map[string]domain.PaymentPlan, len(plans))
		for _, p := range plans {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			s.plans[p.ID] = p
		}
	}
}

// DefaultPlans mirrors the plans seeded by the SQL migrations.
func DefaultPlans() []domain.PaymentPlan {
	return []domain.PaymentPlan{
		{Name: "Monthly", Amount: decimal.NewFromInt(50), DurationMonths: 1},
		{Name: "Quarterly", Amount: decimal.NewFromInt(135), DurationMonths: 3},
		{Name: "Semi-Annual", Amount: decimal.NewFromInt(250), DurationMonths: 6},
		{Name: "Annual", Amount: decimal.NewFromInt(500), DurationMonths: 12},
	}
}

// NewStore creates an empty store seeded with DefaultPlans.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		users:     make(map[string]*userRow),
		payments:  make(map[string]*paymentRow),
		operators: make(map[string]domain.Operator),
	}
	WithPlans(DefaultPlans()...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calls returns how many repository operations reached the store.
func (s *Store) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// FailWith makes every subsequent operation return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Users returns the user table accessor.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Plans returns the payment plan table accessor.
func (s *Store) Plans() repository.PlanRepository { return &planRepo{s} }

// Payments returns the payment table accessor.
func (s *Store) Payments() repository.PaymentRepository { return &paymentRepo{s} }

// Operators returns the operator table accessor.
func (s *Store) Operators() repository.OperatorRepository { return &operatorRepo{s} }

// begin records a call and reports the injected failure, if any. Callers hold mu.
func (s *Store) begin() error {
	s.calls++
	return s.failErr
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

type userRepo struct{ s *Store }

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	return r.s.sortedUsers(func(*userRow) bool { return true }), nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	row, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := row.User
	return &user, nil
}

func (r *userRepo) Search(_ context.Context, term string) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	return r.s.sortedUsers(func(u *userRow) bool {
		if strings.Contains(strings.ToLower(u.FullName), needle) ||
			strings.Contains(strings.ToLower(u.PhoneNumber), needle) {
			return true
		}
		return u.Email != nil && strings.Contains(strings.ToLower(*u.Email), needle)
	}), nil
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return err
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = &userRow{User: *user, seq: r.s.nextSeq()}
	return nil
}

func (r *userRepo) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	row, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !patch.IsEmpty() {
		patch.Apply(&row.User)
		row.UpdatedAt = r.s.now()
	}
	user := row.User
	return &user, nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return err
	}
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.payments {
		if p.UserID == id {
			delete(r.s.payments, pid)
		}
	}
	return nil
}

func (s *Store) sortedUsers(keep func(*userRow) bool) []domain.User {
	rows := make([]*userRow, 0, len(s.users))
	for _, u := range s.users {
		if keep(u) {
			rows = append(rows, u)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	result := make([]domain.User, 0, len(rows))
	for _, u := range rows {
		result = append(result, u.User)
	}
	return result
}

type planRepo struct{ s *Store }

func (r *planRepo) List(_ context.Context) ([]domain.PaymentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	result := make([]domain.PaymentPlan, 0, len(r.s.plans))
	for _, p := range r.s.plans {
		result = append(result, p)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DurationMonths != result[j].DurationMonths {
			return result[i].DurationMonths < result[j].DurationMonths
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *planRepo) GetByID(_ context.Context, id string) (*domain.PaymentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	plan, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &plan, nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) ListDetailed(_ context.Context) ([]domain.PaymentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	return r.s.details(func(*paymentRow) bool { return true }), nil
}

func (r *paymentRepo) ListDetailedByUser(_ context.Context, userID string) ([]domain.PaymentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	return r.s.details(func(p *paymentRow) bool { return p.UserID == userID }), nil
}

func (r *paymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	row, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	payment := row.Payment
	return &payment, nil
}

func (r *paymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return err
	}
	if err := r.s.checkReferences(payment.UserID, payment.PlanID); err != nil {
		return err
	}
	now := r.s.now()
	payment.ID = uuid.NewString()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	r.s.payments[payment.ID] = &paymentRow{Payment: *payment, seq: r.s.nextSeq()}
	return nil
}

func (r *paymentRepo) Update(_ context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	row, ok := r.s.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	updated := row.Payment
	patch.Apply(&updated)
	if err := r.s.checkReferences(updated.UserID, updated.PlanID); err != nil {
		return nil, err
	}
	updated.UpdatedAt = r.s.now()
	row.Payment = updated
	return &updated, nil
}

func (r *paymentRepo) CountByStatus(_ context.Context) (domain.PaymentStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats domain.PaymentStats
	if err := r.s.begin(); err != nil {
		return stats, err
	}
	for _, p := range r.s.payments {
		stats.Total++
		switch p.Status {
		case domain.PaymentStatusPaid:
			stats.Paid++
		case domain.PaymentStatusUnpaid:
			stats.Unpaid++
		case domain.PaymentStatusPartial:
			stats.Partial++
		}
	}
	return stats, nil
}

func (r *paymentRepo) StatusesByUser(_ context.Context) (map[string][]domain.PaymentStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	result := make(map[string][]domain.PaymentStatus)
	for _, p := range r.s.payments {
		result[p.UserID] = append(result[p.UserID], p.Status)
	}
	return result, nil
}

// ErrForeignKey mirrors a foreign key violation raised by the database.
type ErrForeignKey struct {
	Table string
	ID    string
}

func (e *ErrForeignKey) Error() string {
	return "insert or update violates foreign key constraint: " + e.Table + " " + e.ID + " does not exist"
}

func (s *Store) checkReferences(userID, planID string) error {
	if _, ok := s.users[userID]; !ok {
		return &ErrForeignKey{Table: "users", ID: userID}
	}
	if _, ok := s.plans[planID]; !ok {
		return &ErrForeignKey{Table: "payment_plans", ID: planID}
	}
	return nil
}

func (s *Store) details(keep func(*paymentRow) bool) []domain.PaymentDetail {
	rows := make([]*paymentRow, 0, len(s.payments))
	for _, p := range s.payments {
		if keep(p) {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	result := make([]domain.PaymentDetail, 0, len(rows))
	for _, p := range rows {
		d := domain.PaymentDetail{Payment: p.Payment}
		if u, ok := s.users[p.UserID]; ok {
			d.User = domain.UserSummary{ID: u.ID, FullName: u.FullName, PhoneNumber: u.PhoneNumber, Email: u.Email}
		}
		if plan, ok := s.plans[p.PlanID]; ok {
			d.Plan = domain.PlanSummary{ID: plan.ID, Name: plan.Name, Amount: plan.Amount}
		}
		result = append(result, d)
	}
	return result
}

type operatorRepo struct{ s *Store }

func (r *operatorRepo) Create(_ context.Context, operator *domain.Operator) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return err
	}
	for _, existing := range r.s.operators {
		if strings.EqualFold(existing.Email, operator.Email) {
			return &ErrUniqueViolation{Column: "email"}
		}
	}
	now := r.s.now()
	operator.ID = uuid.NewString()
	operator.CreatedAt = now
	operator.UpdatedAt = now
	r.s.operators[operator.ID] = *operator
	return nil
}

func (r *operatorRepo) GetByID(_ context.Context, id string) (*domain.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	op, ok := r.s.operators[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &op, nil
}

func (r *operatorRepo) GetByEmail(_ context.Context, email string) (*domain.Operator, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.begin(); err != nil {
		return nil, err
	}
	for _, op := range r.s.operators {
		if strings.EqualFold(op.Email, email) {
			found := op
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ErrUniqueViolation mirrors a unique constraint violation raised by the database.
type ErrUniqueViolation struct {
	Column string
}

func (e *ErrUniqueViolation) Error() string {
	return "duplicate key value violates unique constraint on " + e.Column
}
