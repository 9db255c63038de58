package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("opening channel: %w", err)
	}
	return conn, ch, nil
}

func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declaring queue %s: %w", name, err)
	}
	return q, nil
}

func DeclareExchange(ch *amqp.Channel, name string, typ string) error {
	err := ch.ExchangeDeclare(
		name,
		typ,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declaring exchange %s: %w", name, err)
	}
	return nil
}

func BindQueueToExchange(ch *amqp.Channel, name string, key string, exchange string) error {
	if err := ch.QueueBind(name, key, exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue %s to exchange %s: %w", name, exchange, err)
	}
	return nil
}

func PublishToExchange(ch *amqp.Channel, exchange string, key string, body []byte, ctype ...string) error {
	contentType := "application/json"
	if len(ctype) > 0 {
		contentType = ctype[0]
	}
	err := ch.Publish(
		exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: contentType,
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to exchange %s: %w", exchange, err)
	}
	return nil
}
