package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/apiforge/internal/domain"
)

// MessageType — тип события.
type MessageType string

// Типы событий.
const (
	MessageTypeRunStarted    MessageType = "run.started"
	MessageTypeRunFinished   MessageType = "run.finished"
	MessageTypeStageFinished MessageType = "stage.finished"
)

// Message — событие для публикации.
type Message struct {
	// ID — уникальный идентификатор события.
	ID string `json:"id"`

	// Type — тип события.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// RunStartedPayload — событие о старте run.
type RunStartedPayload struct {
	RunID    uuid.UUID `json:"run_id"`
	Pipeline string    `json:"pipeline"`
}

// RunFinishedPayload — событие о завершении run.
type RunFinishedPayload struct {
	RunID     uuid.UUID        `json:"run_id"`
	Pipeline  string           `json:"pipeline"`
	Status    domain.RunStatus `json:"status"`
	ElapsedMS int64            `json:"elapsed_ms"`
}

// StageFinishedPayload — событие о завершении стадии.
type StageFinishedPayload struct {
	RunID      uuid.UUID          `json:"run_id"`
	StageID    string             `json:"stage_id"`
	Status     domain.StageStatus `json:"status"`
	Error      string             `json:"error,omitempty"`
	DurationMS int64              `json:"duration_ms"`
}

// Publisher публикует события pipeline в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует событие с routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(ExchangeEvents),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish %s: %w", routingKey, err)
		}

		p.logger.Debug("published event",
			"routing_key", routingKey,
			"message_id", msg.ID,
		)
		return nil
	})
}

// RunStarted публикует событие о старте run.
func (p *Publisher) RunStarted(ctx context.Context, run *domain.Run) error {
	return p.Publish(ctx, RoutingKeyRunStarted, &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeRunStarted,
		Payload:   RunStartedPayload{RunID: run.ID, Pipeline: run.Pipeline},
		Timestamp: time.Now(),
	})
}

// RunFinished публикует событие о завершении run.
func (p *Publisher) RunFinished(ctx context.Context, report *domain.RunReport) error {
	return p.Publish(ctx, RoutingKeyRunFinished, &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeRunFinished,
		Payload: RunFinishedPayload{
			RunID:     report.RunID,
			Pipeline:  report.Pipeline,
			Status:    report.Status,
			ElapsedMS: report.ElapsedMS,
		},
		Timestamp: time.Now(),
	})
}

// StageFinished публикует событие о завершении стадии.
func (p *Publisher) StageFinished(ctx context.Context, runID uuid.UUID, result domain.StageResult) error {
	return p.Publish(ctx, RoutingKeyStageFinished, &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeStageFinished,
		Payload: StageFinishedPayload{
			RunID:      runID,
			StageID:    result.StageID,
			Status:     result.Status,
			Error:      result.Error,
			DurationMS: result.DurationMS,
		},
		Timestamp: time.Now(),
	})
}
