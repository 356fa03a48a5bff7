package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена очередей уведомлений.
const (
	QueueTrialExpiring    = "notifications.trial_expiring"
	QueuePaymentRequested = "payments.requested"
	QueuePaymentResolved  = "payments.resolved"
)

// SetupChannel открывает канал и объявляет очереди уведомлений.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	for _, queue := range []string{QueueTrialExpiring, QueuePaymentRequested, QueuePaymentResolved} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("%s: declare %s: %w", op, queue, err)
		}
	}
	return ch, nil
}
