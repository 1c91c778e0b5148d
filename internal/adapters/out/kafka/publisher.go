// Package kafka publishes committed shipment status changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

const eventType = "shipment.status_changed"

// Writer limits keep a publish short when brokers are unreachable.
const (
	writeTimeout = 2 * time.Second
	maxAttempts  = 3
)

var _ ports.EventPublisher = (*StatusChangedPublisher)(nil)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StatusChangedMessage is the JSON body of every published record.
type StatusChangedMessage struct {
	EventID    string    `json:"event_id"`
	ShipmentID string    `json:"shipment_id"`
	Waybill    string    `json:"waybill_number"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

// StatusChangedPublisher keys records by shipment id so the changes of one
// shipment stay ordered within a partition.
type StatusChangedPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

func NewStatusChangedPublisher(brokers []string, topic string, logger *slog.Logger) *StatusChangedPublisher {
	return newStatusChangedPublisher(newWriter(brokers, topic), logger)
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
		ReadTimeout:  writeTimeout,
		MaxAttempts:  maxAttempts,
	}
}

func newStatusChangedPublisher(writer messageWriter, logger *slog.Logger) *StatusChangedPublisher {
	return &StatusChangedPublisher{writer: writer, logger: logger.With("component", "kafka_publisher")}
}

func (p *StatusChangedPublisher) Publish(ctx context.Context, event shipment.StatusChangedEvent) error {
	body, err := json.Marshal(toMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ShipmentID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
			{Key: "event-id", Value: []byte(event.EventID.String())},
		},
		Time: event.ChangedAt,
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for %s: %w", eventType, event.Waybill, err)
	}

	p.logger.DebugContext(ctx, "status change published",
		"waybill", event.Waybill, "new_status", event.NewStatus.String())
	return nil
}

func (p *StatusChangedPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(event shipment.StatusChangedEvent) StatusChangedMessage {
	return StatusChangedMessage{
		EventID:    event.EventID.String(),
		ShipmentID: event.ShipmentID.String(),
		Waybill:    event.Waybill,
		OldStatus:  event.OldStatus.String(),
		NewStatus:  event.NewStatus.String(),
		ChangedBy:  event.ChangedBy.String(),
		ChangedAt:  event.ChangedAt.UTC(),
	}
}

// LogPublisher records status changes in the log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) LogPublisher {
	return LogPublisher{logger: logger.With("component", "status_log")}
}

func (p LogPublisher) Publish(ctx context.Context, event shipment.StatusChangedEvent) error {
	p.logger.InfoContext(ctx, "shipment status changed",
		"shipment_id", event.ShipmentID.String(),
		"waybill", event.Waybill,
		"old_status", event.OldStatus.String(),
		"new_status", event.NewStatus.String(),
		"changed_by", event.ChangedBy.String(),
	)
	return nil
}
