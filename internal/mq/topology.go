package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeJobs Exchange = "bootkit.jobs"
)

// Queues.
const (
	QueueJobsFinished Queue = "jobs.finished"
)

// Routing keys.
const (
	RoutingKeySucceeded RoutingKey = "succeeded"
	RoutingKeyFailed    RoutingKey = "failed"
)

type binding struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// bindings — привязки очередей к обменникам.
var bindings = []binding{
	{QueueJobsFinished, RoutingKeySucceeded, ExchangeJobs},
	{QueueJobsFinished, RoutingKeyFailed, ExchangeJobs},
}

// SetupTopology объявляет exchange, очередь и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeJobs), // name
			"direct",             // type
			true,                 // durable
			false,                // auto-deleted
			false,                // internal
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeJobs, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueJobsFinished), // name
			true,                      // durable
			false,                     // delete when unused
			false,                     // exclusive
			false,                     // no-wait
			nil,                       // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueJobsFinished, err)
		}

		for _, b := range bindings {
			err := ch.QueueBind(
				string(b.queue),      // queue name
				string(b.routingKey), // routing key
				string(b.exchange),   // exchange
				false,                // no-wait
				nil,                  // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s/%s: %w", b.queue, b.exchange, b.routingKey, err)
			}
		}

		return nil
	})
}
