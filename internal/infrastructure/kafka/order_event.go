package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// OrderEventPublisher encodes order events as JSON keyed by order id, so
// all events of one order land on the same partition in order.
type OrderEventPublisher struct {
	port  domain.PublisherPort
	topic string
}

func NewOrderEventPublisher(port domain.PublisherPort, topic string) *OrderEventPublisher {
	return &OrderEventPublisher{port: port, topic: topic}
}

func (p *OrderEventPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return p.port.Publish(p.topic, domain.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: v,
	})
}

// LogOrderEventPublisher stands in when Kafka is disabled and writes events
// to the process log.
type LogOrderEventPublisher struct {
	log *slog.Logger
}

func NewLogOrderEventPublisher(log *slog.Logger) *LogOrderEventPublisher {
	return &LogOrderEventPublisher{log: log}
}

func (p *LogOrderEventPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	p.log.Info("order event",
		"event_id", event.EventID,
		"type", event.Type,
		"order_id", event.OrderID,
		"from", event.FromStatus,
		"status", event.Status,
		"trigger", event.Trigger,
	)
	return nil
}
