package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeliveryTask is the payload of one scheduled final-document send. It only
// names the sale: the worker re-reads the row before acting, so a task from
// before a restart can never overrule the database.
type DeliveryTask struct {
	SaleID       string    `json:"sale_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

type Producer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{Ch: ch}
}

// ScheduleDelivery publishes the task into the wait queue with the delay as
// a per-message TTL. An already due time gets a minimal TTL so the broker
// still routes through the dead-letter hop.
func (p *Producer) ScheduleDelivery(ctx context.Context, saleID string, at time.Time) error {
	body, err := json.Marshal(DeliveryTask{SaleID: saleID, ScheduledFor: at})
	if err != nil {
		return fmt.Errorf("failed to encode delivery task: %w", err)
	}

	delay := time.Until(at)
	if delay < time.Second {
		delay = time.Second
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		WaitKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish delivery task: %w", err)
	}

	log.Printf("📤 [QUEUE] delivery task for sale %s parked for %s", saleID, delay.Round(time.Second))
	return nil
}
