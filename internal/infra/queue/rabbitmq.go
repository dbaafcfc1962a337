package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/fitness-sales/internal/config"
)

const (
	ExchangeName  = "ex.deliveries"
	WaitQueue     = "q.deliveries.wait"
	DeliveryQueue = "q.deliveries"
	DLQName       = "q.deliveries.dlq"
	DLXName       = "ex.deliveries.dlx"
	WaitKey       = "k.delivery.wait"
	DeliveryKey   = "k.delivery"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(cfg config.RabbitConfig) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Pass, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func (r *RabbitMQ) Close() {
	r.Ch.Close()
	r.Conn.Close()
}

// setupTopology declares the delayed-delivery layout. A scheduled task is
// published into the wait queue with a per-message TTL; it has no consumer,
// so when the TTL expires the broker dead-letters the message into the live
// delivery queue, where the worker picks it up. Messages the worker rejects
// land in the DLQ for inspection.
func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	waitArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": DeliveryKey,
	}
	if _, err := ch.QueueDeclare(WaitQueue, true, false, false, false, waitArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(WaitQueue, WaitKey, ExchangeName, false, nil); err != nil {
		return err
	}

	liveArgs := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": DeliveryKey,
	}
	if _, err := ch.QueueDeclare(DeliveryQueue, true, false, false, false, liveArgs); err != nil {
		return err
	}
	if err := ch.QueueBind(DeliveryQueue, DeliveryKey, ExchangeName, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.QueueBind(DLQName, DeliveryKey, DLXName, false, nil)
}
