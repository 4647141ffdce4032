package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/clubhouse-ops/membership-admin/internal/config"
	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/events"
	"github.com/clubhouse-ops/membership-admin/internal/repository/memory"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
		BootstrapEmail:        "admin@example.com",
		BootstrapPassword:     "changeme",
		BootstrapName:         "Admin",
	}
}

func TestAuthService_BootstrapAndLogin(t *testing.T) {
	store := memory.NewStore()
	cfg := testAuthConfig()
	svc := NewAuthService(cfg, store.Operators(), nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, cfg))
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, cfg))

	operator, token, exp, err := svc.Login(ctx, "ADMIN@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, domain.OperatorRoleAdmin, operator.Role)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, claims.SubjectID)

	_, _, _, err = svc.Login(ctx, "admin@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "changeme")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestAuthService_BootstrapSkippedWithoutCredentials(t *testing.T) {
	store := memory.NewStore()
	cfg := testAuthConfig()
	cfg.BootstrapPassword = ""
	svc := NewAuthService(cfg, store.Operators(), nil)

	require.NoError(t, svc.EnsureBootstrapAdmin(context.Background(), cfg))
	_, err := store.Operators().GetByEmail(context.Background(), cfg.BootstrapEmail)
	assert.Error(t, err)
}

func TestAuthService_CreateOperatorDuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	svc := NewAuthService(testAuthConfig(), store.Operators(), nil)
	ctx := context.Background()

	_, err := svc.CreateOperator(ctx, "Clerk", "clerk@example.com", "pw", domain.OperatorRoleClerk)
	require.NoError(t, err)
	_, err = svc.CreateOperator(ctx, "Clerk", "CLERK@example.com", "pw", domain.OperatorRoleClerk)
	assert.Equal(t, "STORE_ERROR", domainCode(t, err))
}

func TestActivityService_LogsWrites(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	activity := NewActivityService(dispatcher, zap.New(core), config.NotificationConfig{WebhookURL: "http://hooks.local/in"})
	activity.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:       events.EventPaymentCreated,
		Collection: events.CollectionPayments,
		EntityID:   "pay-1",
		ActorID:    "op-1",
		Payload:    events.PaymentWrittenPayload{UserID: "u-1", AmountPaid: "200", Status: "partial"},
	})
	require.NoError(t, err)

	entries := logs.FilterMessage(string(events.EventPaymentCreated)).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "pay-1", fields["payment_id"])
	assert.Equal(t, "partial", fields["status"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:       events.EventUserDeleted,
		Collection: events.CollectionUsers,
		EntityID:   "u-1",
	}))
	assert.Equal(t, 1, logs.FilterMessage(string(events.EventUserDeleted)).Len())
}
