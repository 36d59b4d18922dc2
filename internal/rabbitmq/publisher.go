package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// ReconciledEvent описывает завершённую сверку платежа.
type ReconciledEvent struct {
	PaymentID string `json:"payment_id"`
	UserID    string `json:"user_id"`
	ServiceID string `json:"service_id"`
	Status    string `json:"status"`
	Source    string `json:"source"` // webhook или admin
}

// Publisher публикует события платёжного цикла в exchange payments.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishReconciled публикует событие завершённой сверки.
func (p *Publisher) PublishReconciled(event ReconciledEvent) error {
	return publishMessage(p.ch, "payments", "payment.reconciled", event)
}

// publishMessage публикует сообщение в RabbitMQ.
func publishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.publishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
