// Package cache keeps read results keyed by the collection they were read
// from, so a write to a collection can drop every read that depends on it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/events"
)

// ErrMiss is returned by Get when no live entry exists.
var ErrMiss = errors.New("cache miss")

// QueryCache stores encoded read results under a collection tag. Every tag
// has a generation that InvalidateTag advances; entries are read and written
// against the generation a reader observed before loading, so a load that
// overlaps an invalidation is never served afterwards.
type QueryCache interface {
	Generation(ctx context.Context, tag events.Collection) (int64, error)
	Get(ctx context.Context, tag events.Collection, gen int64, key string) ([]byte, error)
	Set(ctx context.Context, tag events.Collection, gen int64, key string, value []byte, ttl time.Duration) error
	InvalidateTag(ctx context.Context, tag events.Collection) error
}

// Fetch returns the cached value for key, or loads, stores and returns it.
// Cache failures never fail the read; a nil cache always loads.
func Fetch[T any](ctx context.Context, c QueryCache, tag events.Collection, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil || ttl <= 0 {
		return load(ctx)
	}

	gen, err := c.Generation(ctx, tag)
	if err != nil {
		return load(ctx)
	}

	if raw, err := c.Get(ctx, tag, gen, key); err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if raw, err := json.Marshal(value); err == nil {
		_ = c.Set(ctx, tag, gen, key, raw, ttl)
	}
	return value, nil
}

// collectionsFor maps write events to the collections they make stale.
// Deleting a user also removes their payments.
func collectionsFor(event events.Event) []events.Collection {
	switch event.Type {
	case events.EventUserDeleted:
		return []events.Collection{events.CollectionUsers, events.CollectionPayments}
	case events.EventUserUpdated:
		// joined payment reads embed the user's name and phone
		return []events.Collection{events.CollectionUsers, events.CollectionPayments}
	}
	if event.Collection == "" {
		return nil
	}
	if event.Collection == events.CollectionPayments {
		// user listings carry the aggregate payment status
		return []events.Collection{events.CollectionPayments, events.CollectionUsers}
	}
	return []events.Collection{event.Collection}
}

// RegisterInvalidation subscribes c to every write event: a write to a
// collection invalidates all reads tagged with it.
func RegisterInvalidation(dispatcher events.Dispatcher, c QueryCache, logger *zap.Logger) {
	if dispatcher == nil || c == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	events.SubscribeAll(dispatcher, events.WriteEvents, func(ctx context.Context, event events.Event) error {
		var errs []error
		for _, tag := range collectionsFor(event) {
			if err := c.InvalidateTag(ctx, tag); err != nil {
				logger.Warn("cache invalidation failed",
					zap.String("collection", string(tag)),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
				errs = append(errs, err)
				continue
			}
			logger.Debug("cache invalidated",
				zap.String("collection", string(tag)),
				zap.String("event_type", string(event.Type)))
		}
		return errors.Join(errs...)
	})
}
