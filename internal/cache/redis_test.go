package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/clubhouse-ops/membership-admin/internal/events"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisCache_RoundTripAndInvalidate(t *testing.T) {
	client := newRedisClient(t)
	c := NewRedisCache(client, "test")
	ctx := context.Background()

	_, err := c.Get(ctx, events.CollectionUsers, 0, "list")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, events.CollectionUsers, 0, "list", []byte(`["ana"]`), time.Minute))
	require.NoError(t, c.Set(ctx, events.CollectionUsers, 0, "search:an", []byte(`["ana"]`), time.Minute))
	require.NoError(t, c.Set(ctx, events.CollectionPlans, 0, "list", []byte(`[]`), time.Minute))

	raw, err := c.Get(ctx, events.CollectionUsers, 0, "list")
	require.NoError(t, err)
	assert.Equal(t, `["ana"]`, string(raw))

	require.NoError(t, c.InvalidateTag(ctx, events.CollectionUsers))

	gen, err := c.Generation(ctx, events.CollectionUsers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	_, err = c.Get(ctx, events.CollectionUsers, 0, "list")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, events.CollectionUsers, gen, "search:an")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, events.CollectionPlans, 0, "list")
	assert.NoError(t, err)
}

func TestRedisCache_FetchOverlappingInvalidation(t *testing.T) {
	client := newRedisClient(t)
	c := NewRedisCache(client, "race")
	ctx := context.Background()
	loads := 0

	load := func(ctx context.Context) (int, error) {
		loads++
		if loads == 1 {
			require.NoError(t, c.InvalidateTag(ctx, events.CollectionPayments))
		}
		return loads, nil
	}

	got, err := Fetch(ctx, c, events.CollectionPayments, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = Fetch(ctx, c, events.CollectionPayments, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = Fetch(ctx, c, events.CollectionPayments, "stats", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
