package projections

import (
	"context"
	"strings"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/events"
	"github.com/Hiuhuedd/migingo-backend/pkg/kafka"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// Consumer is the subset of the Kafka consumer surface the projector needs
type Consumer interface {
	SubscribeAll(topic string, handler kafka.EventHandler)
}

// StockWriter persists rebuilt vehicle stock projections
type StockWriter interface {
	Upsert(ctx context.Context, projection *VehicleStockProjection) error
}

// Projector keeps vehicle stock projections in sync with ledger events. Each
// issuance or sale event for a vehicle triggers a rebuild of that vehicle's
// read model from its issuances.
type Projector struct {
	issuanceRepo domain.IssuanceRepository
	stockRepo    StockWriter
	logger       *logging.Logger
}

// NewProjector creates a new Projector
func NewProjector(issuanceRepo domain.IssuanceRepository, stockRepo StockWriter, logger *logging.Logger) *Projector {
	return &Projector{
		issuanceRepo: issuanceRepo,
		stockRepo:    stockRepo,
		logger:       logger,
	}
}

// Register subscribes the projector to the issuance and sales topics
func (p *Projector) Register(consumer Consumer) {
	consumer.SubscribeAll(kafka.Topics.IssuanceEvents, p.handleEvent)
	consumer.SubscribeAll(kafka.Topics.SalesEvents, p.handleEvent)
}

func (p *Projector) handleEvent(ctx context.Context, event *events.Event) error {
	vehicleID := vehicleIDFromEvent(event)
	if vehicleID == "" {
		return nil
	}
	return p.Rebuild(ctx, vehicleID)
}

// Rebuild recomputes one vehicle's stock projection from its issuances
func (p *Projector) Rebuild(ctx context.Context, vehicleID string) error {
	issuances, err := p.issuanceRepo.FindByVehicleIDOldestFirst(ctx, vehicleID)
	if err != nil {
		p.logger.WithError(err).Error("Failed to load issuances for projection", "vehicleId", vehicleID)
		return err
	}

	projection := &VehicleStockProjection{VehicleID: vehicleID}

	type key struct {
		inventoryID string
		unit        string
	}
	entries := make(map[key]*StockEntry)
	order := make([]key, 0)

	for _, iss := range issuances {
		switch iss.Status {
		case domain.IssuanceStatusIssued:
			projection.IssuedCount++
		case domain.IssuanceStatusPartial:
			projection.PartialCount++
		case domain.IssuanceStatusCollected:
			projection.CollectedCount++
		}

		for i := range iss.Items {
			item := &iss.Items[i]
			for j := range item.Layers {
				layer := &item.Layers[j]
				if !layer.Collected {
					continue
				}
				k := key{inventoryID: item.InventoryID, unit: strings.ToLower(layer.Unit)}
				entry, ok := entries[k]
				if !ok {
					entry = &StockEntry{
						InventoryID:  item.InventoryID,
						ProductName:  item.ProductName,
						Unit:         layer.Unit,
						SellingPrice: layer.SellingPrice,
					}
					entries[k] = entry
					order = append(order, k)
				}
				entry.CollectedQty += layer.Quantity
				entry.SoldQty += layer.SoldQty
				entry.Available += layer.Quantity - layer.SoldQty
			}
		}
	}

	projection.Entries = make([]StockEntry, 0, len(order))
	for _, k := range order {
		projection.Entries = append(projection.Entries, *entries[k])
	}

	if err := p.stockRepo.Upsert(ctx, projection); err != nil {
		p.logger.WithError(err).Error("Failed to upsert vehicle stock projection", "vehicleId", vehicleID)
		return err
	}

	p.logger.Debug("Rebuilt vehicle stock projection",
		"vehicleId", vehicleID,
		"entries", len(projection.Entries),
	)
	return nil
}

// vehicleIDFromEvent pulls the vehicle ID out of an event payload. Events
// decode with a generic map payload on the consumer side.
func vehicleIDFromEvent(event *events.Event) string {
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	vehicleID, _ := data["vehicleId"].(string)
	return vehicleID
}
