package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/muhasebehub/muhasebe.go/rabbitmq"
	"github.com/muhasebehub/muhasebe.go/rabbitmq/mock_rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:generate mockgen -destination=./mock_rabbitmq/rabbitmq.go github.com/muhasebehub/muhasebe.go/rabbitmq AMQPClient

func TestPublishLedgerEvent(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Eq("test_ledger"), gomock.Eq("topic"), true, false, false, false, gomock.Nil()).
		Times(1).
		Return(nil)

	var published amqp.Publishing
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Eq("test_ledger"), gomock.Eq("transactions.created"), false, false, gomock.Any()).
		Times(1).
		DoAndReturn(func(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
			published = msg
			return nil
		})

	client, err := rabbitmq.NewClient(amqpClient, rabbitmq.WithLedgerExchange("test_ledger"))
	require.NoError(t, err)

	event := rabbitmq.NewLedgerEvent("transactions", "created", 7, 1, map[string]string{"amount": "10.00"}, 3, 4)
	require.NoError(t, client.PublishLedgerEvent(context.Background(), event))

	assert.Equal(t, "application/json", published.ContentType)
	assert.Equal(t, event.ID, published.MessageId)

	decoded := rabbitmq.LedgerEvent{}
	require.NoError(t, json.Unmarshal(published.Body, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, int64(7), decoded.EntityID)
	assert.Equal(t, []int64{3, 4}, decoded.AccountIDs)
}

func TestNewClientFailsWhenExchangeCannotBeDeclared(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("channel closed"))

	_, err := rabbitmq.NewClient(amqpClient)
	assert.Error(t, err)
}

func TestPublishErrorIsReturned(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	amqpClient := mock_rabbitmq.NewMockAMQPClient(ctrl)
	amqpClient.EXPECT().
		ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
	amqpClient.EXPECT().
		PublishWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("amqp: trying to publish during reconnect"))

	client, err := rabbitmq.NewClient(amqpClient)
	require.NoError(t, err)

	err = client.PublishLedgerEvent(context.Background(), rabbitmq.NewLedgerEvent("invoices", "deleted", 1, 1, nil))
	assert.Error(t, err)
}
