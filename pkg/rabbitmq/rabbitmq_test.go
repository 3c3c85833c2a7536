package rabbitmq

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"shelflife/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetOutput(io.Discard)
}

type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestDecodeProductEvent(t *testing.T) {
	event := models.ProductEvent{
		Type:       models.EventProductCreated,
		ProductID:  "p-1",
		Name:       "Milk",
		ExpiryDate: "2025-01-01",
		OccurredAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, err := DecodeProductEvent(body)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)

	_, err = DecodeProductEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeProductEvent([]byte(`{"name":"Milk"}`))
	assert.Error(t, err)
}

func TestHandleDelivery(t *testing.T) {
	t.Run("success acks", func(t *testing.T) {
		acker := &fakeAcknowledger{}
		handleDelivery(amqp.Delivery{Acknowledger: acker, DeliveryTag: 1}, func(amqp.Delivery) error { return nil })
		assert.True(t, acker.acked)
		assert.False(t, acker.nacked)
	})

	t.Run("handler error requeues", func(t *testing.T) {
		acker := &fakeAcknowledger{}
		handleDelivery(amqp.Delivery{Acknowledger: acker, DeliveryTag: 2}, func(amqp.Delivery) error {
			return errors.New("downstream unavailable")
		})
		assert.False(t, acker.acked)
		assert.True(t, acker.nacked)
		assert.True(t, acker.requeued)
	})

	t.Run("malformed audit message is acked", func(t *testing.T) {
		acker := &fakeAcknowledger{}
		handleDelivery(amqp.Delivery{Acknowledger: acker, DeliveryTag: 3, Body: []byte("{")}, AuditProductEvent)
		assert.True(t, acker.acked)
	})
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{}
	assert.Error(t, c.PublishProductEvent(models.ProductEvent{Type: models.EventProductCreated}))
	assert.Error(t, c.ConsumeProductEvents(AuditProductEvent))
}
