// Package event publishes moderation events for downstream consumers.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	TypeStatusChanged = "product.status_changed"
	TypeSold          = "product.sold"
	TypeDeleted       = "product.deleted"
)

type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  uuid.UUID `json:"product_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is best effort: a failed publish never fails the originating request.
type Publisher interface {
	Publish(ctx context.Context, evt ProductEvent)
	Close() error
}

type rabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   *zap.Logger
}

// NewRabbitPublisher dials the broker and declares a durable queue.
func NewRabbitPublisher(url, queue string, log *zap.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	return &rabbitPublisher{
		conn:  conn,
		ch:    ch,
		queue: queue,
		log:   log.With(zap.String("component", "event_publisher")),
	}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, evt ProductEvent) {
	body, err := json.Marshal(evt)
	if err != nil {
		p.log.Error("Failed to encode event", zap.Error(err), zap.String("type", evt.Type))
		return
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         evt.Type,
		MessageId:    uuid.NewString(),
		Timestamp:    evt.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.log.Error("Failed to publish event",
			zap.Error(err),
			zap.String("type", evt.Type),
			zap.String("product_id", evt.ProductID.String()),
		)
	}
}

func (p *rabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, ProductEvent) {}
func (noopPublisher) Close() error                          { return nil }
