package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var consumerTracer = otel.Tracer("messaging/consumer")

// Consumer drains a durable queue with manual per-message acknowledgment.
// A message is acked only after its handler returns nil, so delivery is
// at-least-once on this side too.
type Consumer struct {
	ch    *amqp.Channel
	queue string
	tag   string
}

func NewConsumer(conn *amqp.Connection, queue, tag string) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	// One unacked message at a time keeps the drain window small.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return &Consumer{ch: ch, queue: queue, tag: tag}, nil
}

// Consume blocks, delivering messages to handler until ctx is cancelled or
// the broker closes the channel. On cancellation the in-flight message is
// finished and acked before returning; no new deliveries are taken.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, payload []byte) error) error {
	msgs, err := c.ch.Consume(
		c.queue,
		c.tag,
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("deliveries channel for %s closed", c.queue)
			}

			if err := c.processMessage(ctx, msg, handler); err != nil {
				_ = msg.Nack(false, true) // requeue for redelivery
				continue
			}

			_ = msg.Ack(false)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg amqp.Delivery, handler func(ctx context.Context, payload []byte) error) error {
	parentCtx := otel.GetTextMapPropagator().Extract(ctx, NewHeaderCarrier(msg.Headers))

	spanCtx, span := consumerTracer.Start(parentCtx, "process "+c.queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystemRabbitmq,
			semconv.MessagingOperationName("process"),
			semconv.MessagingOperationTypeDeliver,
			semconv.MessagingDestinationName(c.queue),
		),
	)
	defer span.End()

	if err := handler(spanCtx, msg.Body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c *Consumer) Close() error {
	return c.ch.Close()
}
