package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/clubhouse-ops/membership-admin/internal/config"
	"github.com/clubhouse-ops/membership-admin/internal/events"
)

// ActivityService records every write to members and payments.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserCreated, a.handleUserWritten)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.handleUserWritten)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleUserDeleted)
	a.dispatcher.Subscribe(events.EventPaymentCreated, a.handlePaymentWritten)
	a.dispatcher.Subscribe(events.EventPaymentUpdated, a.handlePaymentWritten)
}

func (a *ActivityService) handleUserWritten(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("user_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *ActivityService) handleUserDeleted(ctx context.Context, event events.Event) error {
	a.logger.Warn(string(event.Type),
		zap.String("user_id", event.EntityID),
		zap.String("actor_id", event.ActorID))
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *ActivityService) handlePaymentWritten(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("payment_id", event.EntityID),
		zap.String("actor_id", event.ActorID),
	}
	if p, ok := event.Payload.(events.PaymentWrittenPayload); ok {
		fields = append(fields,
			zap.String("user_id", p.UserID),
			zap.String("amount_paid", p.AmountPaid),
			zap.String("status", p.Status))
	}
	a.logger.Info(string(event.Type), fields...)
	a.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (a *ActivityService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("entity_id", event.EntityID),
		zap.String("collection", string(event.Collection)),
		zap.String("event_type", string(event.Type)))
}
