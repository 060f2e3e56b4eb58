package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes messages to a durable queue for an external mail
// worker to deliver. A connection is dialed per publish; this keeps the
// notifier stateless and matches the fire-and-forget contract — a broker
// outage loses the message and nothing else.
type AMQPNotifier struct {
	URL   string
	Queue string
}

func NewAMQPNotifier(url, queue string) *AMQPNotifier {
	if queue == "" {
		queue = "mail.outbound"
	}
	return &AMQPNotifier{URL: url, Queue: queue}
}

func (n *AMQPNotifier) Send(ctx context.Context, msg Message) error {
	conn, err := amqp.Dial(n.URL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(n.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp queue declare: %w", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", n.Queue, false, false, pub); err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}
