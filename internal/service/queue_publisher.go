// Package service holds integrations that sit between the HTTP
// handlers and external systems, currently the RabbitMQ publisher.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/greenwork/greenwork-api/internal/queue"
)

// QueuePublisher publishes reservation events to the durable
// reservation.events queue.  Each publish dials its own connection;
// event volume here is one message per booking, so connection reuse
// buys nothing worth the reconnect bookkeeping.  Errors are logged
// and returned; callers treat publishing as best-effort.
type QueuePublisher struct {
	URL string
}

func NewQueuePublisher(url string) *QueuePublisher {
	return &QueuePublisher{URL: url}
}

// Publish marshals the event and sends it as a persistent message so
// it survives a broker restart.
func (p *QueuePublisher) Publish(ctx context.Context, ev queue.ReservationEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		"reservation.events",
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                   // default exchange
		"reservation.events", // routing key = queue name
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
