package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubhouse-ops/membership-admin/internal/events"
)

func TestMemoryCache_GetSetExpire(t *testing.T) {
	c := NewMemoryCache()
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	ctx := context.Background()

	_, err := c.Get(ctx, events.CollectionUsers, 0, "list")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, events.CollectionUsers, 0, "list", []byte(`[1]`), time.Minute))
	raw, err := c.Get(ctx, events.CollectionUsers, 0, "list")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(raw))

	current = current.Add(time.Minute)
	_, err = c.Get(ctx, events.CollectionUsers, 0, "list")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_InvalidateTagOnlyDropsThatTag(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, events.CollectionUsers, 0, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, events.CollectionUsers, 0, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, events.CollectionPlans, 0, "a", []byte("3"), time.Minute))

	require.NoError(t, c.InvalidateTag(ctx, events.CollectionUsers))

	_, err := c.Get(ctx, events.CollectionUsers, 0, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, events.CollectionUsers, 0, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, events.CollectionPlans, 0, "a")
	assert.NoError(t, err)
}

func TestFetch_LoadsOnceUntilInvalidated(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"ana", "ben"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, c, events.CollectionUsers, "list", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"ana", "ben"}, got)
	}
	assert.Equal(t, 1, loads)

	require.NoError(t, c.InvalidateTag(ctx, events.CollectionUsers))
	_, err := Fetch(ctx, c, events.CollectionUsers, "list", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestMemoryCache_SetForStaleGenerationIsDropped(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	gen, err := c.Generation(ctx, events.CollectionUsers)
	require.NoError(t, err)
	require.NoError(t, c.InvalidateTag(ctx, events.CollectionUsers))

	require.NoError(t, c.Set(ctx, events.CollectionUsers, gen, "list", []byte("old"), time.Minute))
	next, err := c.Generation(ctx, events.CollectionUsers)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)

	_, err = c.Get(ctx, events.CollectionUsers, next, "list")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, events.CollectionUsers, gen, "list")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestFetch_InvalidationDuringLoadIsNotCached(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	stored := []string{"ana"}
	loads := 0

	load := func(ctx context.Context) ([]string, error) {
		loads++
		snapshot := append([]string(nil), stored...)
		if loads == 1 {
			// a write lands after the read but before the result is cached
			stored = append(stored, "ben")
			require.NoError(t, c.InvalidateTag(ctx, events.CollectionUsers))
		}
		return snapshot, nil
	}

	got, err := Fetch(ctx, c, events.CollectionUsers, "list", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, got)

	got, err = Fetch(ctx, c, events.CollectionUsers, "list", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "ben"}, got)
	assert.Equal(t, 2, loads)

	got, err = Fetch(ctx, c, events.CollectionUsers, "list", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "ben"}, got)
	assert.Equal(t, 2, loads)
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	boom := errors.New("boom")
	calls := 0

	load := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	_, err := Fetch(ctx, c, events.CollectionPayments, "stats", time.Minute, load)
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, c, events.CollectionPayments, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestFetch_NilCacheAlwaysLoads(t *testing.T) {
	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	_, _ = Fetch[int](context.Background(), nil, events.CollectionUsers, "k", time.Minute, load)
	_, _ = Fetch[int](context.Background(), nil, events.CollectionUsers, "k", time.Minute, load)
	assert.Equal(t, 2, calls)
}

func TestRegisterInvalidation(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	c := NewMemoryCache()
	RegisterInvalidation(dispatcher, c, nil)

	seed := func() {
		for _, tag := range []events.Collection{events.CollectionUsers, events.CollectionPayments, events.CollectionPlans} {
			gen, err := c.Generation(ctx, tag)
			require.NoError(t, err)
			require.NoError(t, c.Set(ctx, tag, gen, "k", []byte("v"), time.Minute))
		}
	}
	cached := func(tag events.Collection) bool {
		gen, err := c.Generation(ctx, tag)
		require.NoError(t, err)
		_, err = c.Get(ctx, tag, gen, "k")
		return err == nil
	}

	seed()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventPaymentCreated, Collection: events.CollectionPayments}))
	assert.False(t, cached(events.CollectionPayments))
	assert.False(t, cached(events.CollectionUsers))
	assert.True(t, cached(events.CollectionPlans))

	seed()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserCreated, Collection: events.CollectionUsers}))
	assert.False(t, cached(events.CollectionUsers))
	assert.True(t, cached(events.CollectionPayments))

	seed()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventUserDeleted, Collection: events.CollectionUsers}))
	assert.False(t, cached(events.CollectionUsers))
	assert.False(t, cached(events.CollectionPayments))
	assert.True(t, cached(events.CollectionPlans))
}
