package stream

import (
	"context"
	"encoding/json"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// TopicInventory is the hub topic carrying catalog snapshots
const TopicInventory = "inventory"

// InventoryStream publishes catalog snapshots to the hub after inventory
// mutations so SSE clients see fresh state without polling
type InventoryStream struct {
	hub    *Hub
	logger *logging.Logger
}

// NewInventoryStream creates a new InventoryStream
func NewInventoryStream(hub *Hub, logger *logging.Logger) *InventoryStream {
	return &InventoryStream{hub: hub, logger: logger}
}

// PublishInventorySnapshot serializes the catalog and broadcasts it
func (s *InventoryStream) PublishInventorySnapshot(ctx context.Context, items []*domain.InventoryItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to marshal inventory snapshot")
		return
	}
	s.hub.Publish(ctx, TopicInventory, payload)
}
