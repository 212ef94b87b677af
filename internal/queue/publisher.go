package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to RabbitMQ. Publishing is best
// effort: the reservation has already committed when an event goes
// out, so a broker outage is logged and swallowed rather than failing
// the request. A Publisher with an empty URL discards everything.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given broker URL. An empty
// url yields a no-op publisher.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishReservationCreated sends a ReservationCreatedEvent to its
// durable queue.
func (p *Publisher) PublishReservationCreated(ctx context.Context, ev ReservationCreatedEvent) {
	p.publish(ctx, ReservationCreatedQueue, ev)
}

// PublishReservationCanceled sends a ReservationCanceledEvent to its
// durable queue.
func (p *Publisher) PublishReservationCanceled(ctx context.Context, ev ReservationCanceledEvent) {
	p.publish(ctx, ReservationCanceledQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, ev interface{}) {
	if p == nil || p.url == "" {
		return
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts; declare is idempotent.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare %s failed: %v", queueName, err)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish to %s failed: %v", queueName, err)
	}
}
