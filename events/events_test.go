package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishJSON(context.Background(), KeyMessageSent, MessageSent{MessageID: 1}))
	assert.NoError(t, p.Close())
}

func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL not set")
	}

	const exchange = "movein.test"
	pub, err := NewAMQPPublisher(url, exchange)
	require.NoError(t, err)
	defer pub.Close()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	defer conn.Close()
	ch, err := conn.Channel()
	require.NoError(t, err)
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "message.*", exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	sent := MessageSent{MessageID: 7, SenderID: 1, ReceiverID: 2, ListingID: 3, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, pub.PublishJSON(context.Background(), KeyMessageSent, sent))

	select {
	case d := <-deliveries:
		assert.Equal(t, KeyMessageSent, d.RoutingKey)
		assert.Equal(t, "application/json", d.ContentType)
		var got MessageSent
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, sent, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}
}
