package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/events"
	"github.com/clubhouse-ops/membership-admin/internal/paymentstatus"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// UserService manages members and their aggregate payment standing.
type UserService struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	cache    ReadCache
	events   publisher
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	PaymentRepo repository.PaymentRepository
	Dispatcher  events.Dispatcher
	Cache       ReadCache
	Logger      *zap.Logger
}

// UserInput is the registration form.
type UserInput struct {
	FullName    string
	PhoneNumber string
	Email       *string
	Gender      *string
	Address     *string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:    deps.UserRepo,
		payments: deps.PaymentRepo,
		cache:    deps.Cache,
		events:   newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// Register validates the form and stores a new member.
func (s *UserService) Register(ctx context.Context, actorID string, input UserInput) (*domain.User, error) {
	user := &domain.User{
		FullName:    strings.TrimSpace(input.FullName),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Email:       optional(input.Email),
		Gender:      optional(input.Gender),
		Address:     optional(input.Address),
	}
	if err := validateUser(user.FullName, user.PhoneNumber); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError("user", err)
	}
	s.publishUser(ctx, events.EventUserCreated, actorID, user)
	return user, nil
}

// Update applies a partial change. Required fields cannot be blanked.
func (s *UserService) Update(ctx context.Context, actorID, id string, patch domain.UserPatch) (*domain.User, error) {
	patch = normalizeUserPatch(patch)
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	details := map[string]any{}
	if patch.FullName != nil && *patch.FullName == "" {
		details["full_name"] = "required"
	}
	if patch.PhoneNumber != nil && *patch.PhoneNumber == "" {
		details["phone_number"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("Full name and phone number are required", details)
	}

	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("user", err)
	}
	s.publishUser(ctx, events.EventUserUpdated, actorID, user)
	return user, nil
}

// Delete removes a member; their payments are removed with them.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError("user", err)
	}
	s.events.publish(ctx, events.Event{
		Type:       events.EventUserDeleted,
		Collection: events.CollectionUsers,
		EntityID:   id,
		ActorID:    actorID,
	})
	return nil
}

// Get returns one member.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("user", err)
	}
	return user, nil
}

// List returns every member, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := fetch(ctx, s.cache, events.CollectionUsers, "list", s.users.List)
	if err != nil {
		return nil, storeError("user", err)
	}
	return nonNil(users), nil
}

// Search matches the term against name, phone and email. A blank term
// returns nothing without touching the store.
func (s *UserService) Search(ctx context.Context, term string) ([]domain.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.User{}, nil
	}
	users, err := fetch(ctx, s.cache, events.CollectionUsers, "search:"+strings.ToLower(term),
		func(ctx context.Context) ([]domain.User, error) { return s.users.Search(ctx, term) })
	if err != nil {
		return nil, storeError("user", err)
	}
	return nonNil(users), nil
}

// Count returns the number of registered members.
func (s *UserService) Count(ctx context.Context) (int, error) {
	users, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// ListWithStatus returns every member with the aggregate status of their
// payments, recomputed from the raw payment rows.
func (s *UserService) ListWithStatus(ctx context.Context) ([]domain.UserWithStatus, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := fetch(ctx, s.cache, events.CollectionPayments, "statuses_by_user", s.payments.StatusesByUser)
	if err != nil {
		return nil, storeError("payment", err)
	}

	result := make([]domain.UserWithStatus, 0, len(users))
	for _, u := range users {
		own := statuses[u.ID]
		result = append(result, domain.UserWithStatus{
			User:          u,
			PaymentStatus: paymentstatus.AggregateUserStatus(own),
			PaymentCount:  len(own),
		})
	}
	return result, nil
}

func (s *UserService) publishUser(ctx context.Context, eventType events.EventType, actorID string, user *domain.User) {
	s.events.publish(ctx, events.Event{
		Type:       eventType,
		Collection: events.CollectionUsers,
		EntityID:   user.ID,
		ActorID:    actorID,
		Payload: events.UserWrittenPayload{
			FullName:    user.FullName,
			PhoneNumber: user.PhoneNumber,
		},
	})
}

func validateUser(fullName, phone string) error {
	details := map[string]any{}
	if fullName == "" {
		details["full_name"] = "required"
	}
	if phone == "" {
		details["phone_number"] = "required"
	}
	if len(details) == 0 {
		return nil
	}
	return apperrors.NewValidationError("Full name and phone number are required", details)
}

func normalizeUserPatch(p domain.UserPatch) domain.UserPatch {
	if p.FullName != nil {
		p.FullName = trimmed(*p.FullName)
	}
	if p.PhoneNumber != nil {
		p.PhoneNumber = trimmed(*p.PhoneNumber)
	}
	if p.Email != nil {
		p.Email = trimmed(*p.Email)
	}
	if p.Gender != nil {
		p.Gender = trimmed(*p.Gender)
	}
	if p.Address != nil {
		p.Address = trimmed(*p.Address)
	}
	return p
}

// optional turns blank optional fields into nil so they are stored as NULL.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimmed(s string) *string {
	v := strings.TrimSpace(s)
	return &v
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
