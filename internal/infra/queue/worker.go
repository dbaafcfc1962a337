package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/fitness-sales/internal/infra/http/middleware"
)

// Deliverer is the use case the worker hands due tasks to.
type Deliverer interface {
	Deliver(ctx context.Context, saleID string) error
}

type Worker struct {
	Channel   *amqp.Channel
	Deliverer Deliverer
}

func NewWorker(ch *amqp.Channel, deliverer Deliverer) *Worker {
	return &Worker{Channel: ch, Deliverer: deliverer}
}

// Start consumes the live delivery queue until ctx is cancelled. Acks are
// manual: a failed send is rejected into the DLQ, and the reconciliation
// sweep reschedules the sale after the grace window regardless.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.Channel.Consume(
		DeliveryQueue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	log.Printf("👷 [WORKER] consuming '%s'", DeliveryQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return amqp.ErrClosed
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var task DeliveryTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Printf("❌ [WORKER] malformed delivery task: %s", err)
		// Poison message, reject without requeue so the queue keeps moving.
		d.Nack(false, false)
		return
	}

	log.Printf("📥 [WORKER] delivery task due for sale %s", task.SaleID)

	if err := w.Deliverer.Deliver(ctx, task.SaleID); err != nil {
		log.Printf("❌ [WORKER] delivery for sale %s failed: %s", task.SaleID, err)
		d.Nack(false, false)
		return
	}
	middleware.RecordDelivery()
	d.Ack(false)
}
