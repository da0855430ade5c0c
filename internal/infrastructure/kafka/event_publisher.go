package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/events"
	"github.com/Hiuhuedd/migingo-backend/pkg/kafka"
)

// Producer is the subset of the Kafka producer surface the publisher needs
type Producer interface {
	PublishEvent(ctx context.Context, topic string, event *events.Event) error
}

// EventPublisher implements domain event publishing over Kafka, routing each
// event to its topic by type family
type EventPublisher struct {
	producer     Producer
	eventFactory *events.EventFactory
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(producer Producer, eventFactory *events.EventFactory) *EventPublisher {
	return &EventPublisher{
		producer:     producer,
		eventFactory: eventFactory,
	}
}

// Publish publishes a single domain event to Kafka
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	subject := eventSubject(event)

	ce := p.eventFactory.CreateEvent(ctx, event.EventType(), subject, event)

	topic := topicFor(event.EventType())
	if err := p.producer.PublishEvent(ctx, topic, ce); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}

	return nil
}

// PublishAll publishes multiple domain events to Kafka
func (p *EventPublisher) PublishAll(ctx context.Context, evts []domain.DomainEvent) error {
	for _, event := range evts {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// eventSubject derives the event subject from the aggregate identity
func eventSubject(event domain.DomainEvent) string {
	switch e := event.(type) {
	case *domain.IssuanceCreatedEvent:
		return e.IssuanceID
	case *domain.LayerCollectedEvent:
		return e.IssuanceID
	case *domain.IssuanceCollectedEvent:
		return e.IssuanceID
	case *domain.UnitBrokenEvent:
		return e.VehicleID
	case *domain.SaleRecordedEvent:
		return e.SaleID
	case *domain.InventoryCreatedEvent:
		return e.InventoryID
	case *domain.InventoryUpdatedEvent:
		return e.InventoryID
	case *domain.InventoryDeletedEvent:
		return e.InventoryID
	case *domain.InventoryRestoredEvent:
		return e.InventoryID
	case *domain.LowStockEvent:
		return e.InventoryID
	case *domain.VehicleRegisteredEvent:
		return e.VehicleID
	case *domain.VehicleUpdatedEvent:
		return e.VehicleID
	default:
		return ""
	}
}

// topicFor routes an event type to its Kafka topic by family
func topicFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "ledger.issuance."), eventType == "ledger.unit.broken":
		return kafka.Topics.IssuanceEvents
	case strings.HasPrefix(eventType, "ledger.sale."):
		return kafka.Topics.SalesEvents
	case strings.HasPrefix(eventType, "ledger.inventory."):
		return kafka.Topics.InventoryEvents
	case strings.HasPrefix(eventType, "ledger.vehicle."):
		return kafka.Topics.VehicleEvents
	default:
		return kafka.Topics.InventoryEvents
	}
}
