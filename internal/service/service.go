package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/cache"
	"github.com/clubhouse-ops/membership-admin/internal/events"
	"github.com/clubhouse-ops/membership-admin/internal/repository"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
)

// ReadCache bundles the optional read-through cache shared by services.
// A nil Store or zero TTL disables caching.
type ReadCache struct {
	Store cache.QueryCache
	TTL   time.Duration
}

// publisher emits write events after successful store calls.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func newPublisher(dispatcher events.Dispatcher, logger *zap.Logger) publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return publisher{dispatcher: dispatcher, logger: logger, now: time.Now}
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

// storeError maps a repository failure onto the API error taxonomy.
func storeError(resource string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewInternalError(err)
	}
	return apperrors.NewStoreError(err)
}

func fetch[T any](ctx context.Context, rc ReadCache, tag events.Collection, key string, load func(context.Context) (T, error)) (T, error) {
	return cache.Fetch(ctx, rc.Store, tag, key, rc.TTL, load)
}
