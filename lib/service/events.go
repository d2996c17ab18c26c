package service

import (
	"context"

	"github.com/muhasebehub/muhasebe.go/rabbitmq"
)

// publish sends a ledger event for a committed change. Publishing never
// fails the request: the change is already committed.
func (svc *LedgerService) publish(ctx context.Context, entity, action string, id, actor int64, payload interface{}, accountIDs ...int64) {
	if svc.RabbitMQClient == nil {
		return
	}
	event := rabbitmq.NewLedgerEvent(entity, action, id, actor, payload, accountIDs...)
	if err := svc.RabbitMQClient.PublishLedgerEvent(ctx, event); err != nil {
		svc.Logger.Errorf("Failed to publish ledger event %s for %s %d: %v", event.RoutingKey(), entity, id, err)
	}
}
