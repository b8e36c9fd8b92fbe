package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shopflow/shopflow/internal/retry"
)

// OrdersQueue carries order-created events. Declared durable by both the
// publisher and the consumer so whichever side starts first wins.
const OrdersQueue = "orders"

// Dial connects to the broker with bounded linear-backoff retries.
func Dial(ctx context.Context, url string, attempts int, step time.Duration) (*amqp.Connection, error) {
	var conn *amqp.Connection

	err := retry.Do(ctx, attempts, step, func(context.Context) error {
		var err error
		conn, err = amqp.Dial(url)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	return conn, nil
}

// Probe returns a health probe that opens and closes a fresh broker
// connection within the given timeout.
func Probe(url string, timeout time.Duration) func(ctx context.Context) error {
	return func(context.Context) error {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Dial: amqp.DefaultDial(timeout),
		})
		if err != nil {
			return err
		}
		return conn.Close()
	}
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}
