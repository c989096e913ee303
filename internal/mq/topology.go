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

// ExchangeEvents — topic-обменник событий pipeline.
const ExchangeEvents Exchange = "apiforge.events"

// Очереди событий.
const (
	// QueueRunEvents — события жизненного цикла run.
	QueueRunEvents Queue = "events.runs"

	// QueueStageEvents — события завершения стадий.
	QueueStageEvents Queue = "events.stages"
)

// Routing keys событий.
const (
	RoutingKeyRunStarted    RoutingKey = "run.started"
	RoutingKeyRunFinished   RoutingKey = "run.finished"
	RoutingKeyStageFinished RoutingKey = "stage.finished"
)

// SetupTopology объявляет обменник, очереди и привязки.
//
// Идемпотентно: повторное объявление с теми же параметрами безопасно.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents),
			"topic",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		bindings := []struct {
			queue   Queue
			pattern string
		}{
			{QueueRunEvents, "run.*"},
			{QueueStageEvents, "stage.*"},
		}

		for _, b := range bindings {
			if _, err := ch.QueueDeclare(
				string(b.queue),
				true,  // durable
				false, // delete when unused
				false, // exclusive
				false, // no-wait
				nil,
			); err != nil {
				return fmt.Errorf("declare queue %s: %w", b.queue, err)
			}
			if err := ch.QueueBind(
				string(b.queue),
				b.pattern,
				string(ExchangeEvents),
				false,
				nil,
			); err != nil {
				return fmt.Errorf("bind queue %s: %w", b.queue, err)
			}
		}

		return nil
	})
}
