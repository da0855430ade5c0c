package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssuanceStatus represents the collection state of an issuance
type IssuanceStatus string

const (
	IssuanceStatusIssued    IssuanceStatus = "issued"
	IssuanceStatusPartial   IssuanceStatus = "partial"
	IssuanceStatusCollected IssuanceStatus = "collected"
)

// IsValid checks if the status is valid
func (s IssuanceStatus) IsValid() bool {
	switch s {
	case IssuanceStatusIssued, IssuanceStatusPartial, IssuanceStatusCollected:
		return true
	default:
		return false
	}
}

// IssuedLayer is one packaging layer of an issued item. Quantity is the
// amount issued at that layer; CollectedQty and Collected track physical
// confirmation; SoldQty tracks depletion through sales.
// Invariant: 0 <= SoldQty <= CollectedQty <= Quantity.
type IssuedLayer struct {
	LayerIndex   int        `bson:"layerIndex" json:"layerIndex"`
	Unit         string     `bson:"unit" json:"unit"`
	Quantity     int        `bson:"quantity" json:"quantity"`
	SellingPrice float64    `bson:"sellingPrice" json:"sellingPrice"`
	CollectedQty int        `bson:"collectedQty" json:"collectedQty"`
	Collected    bool       `bson:"collected" json:"collected"`
	CollectedAt  *time.Time `bson:"collectedAt,omitempty" json:"collectedAt,omitempty"`
	SoldQty      int        `bson:"soldQty" json:"soldQty"`
}

// Available returns the collected quantity not yet sold
func (l *IssuedLayer) Available() int {
	if !l.Collected {
		return 0
	}
	return l.Quantity - l.SoldQty
}

// IssuedItem is one catalog item within an issuance, with the layers issued.
// Prices are frozen from the packaging structure at issuance time.
type IssuedItem struct {
	InventoryID string        `bson:"inventoryId" json:"inventoryId"`
	ProductName string        `bson:"productName" json:"productName"`
	BuyingPrice float64       `bson:"buyingPrice" json:"buyingPrice"`
	Layers      []IssuedLayer `bson:"layers" json:"layers"`
}

// Issuance records stock moved from central inventory to one vehicle, pending
// physical collection. Mutated in place by collection, break-unit transfer,
// and sale depletion; the Version field guards concurrent writers.
type Issuance struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssuanceID   string             `bson:"issuanceId" json:"issuanceId"`
	VehicleID    string             `bson:"vehicleId" json:"vehicleId"`
	Items        []IssuedItem       `bson:"items" json:"items"`
	Status       IssuanceStatus     `bson:"status" json:"status"`
	IssuedAt     time.Time          `bson:"issuedAt" json:"issuedAt"`
	CollectedAt  *time.Time         `bson:"collectedAt,omitempty" json:"collectedAt,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Version      int64              `bson:"version" json:"-"`
	LastUpdated  time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	DomainEvents []DomainEvent      `bson:"-" json:"-"`
}

// NewIssuance creates an issuance for a vehicle. Layers must already carry
// their frozen selling prices; collection counters are seeded to zero.
func NewIssuance(issuanceID, vehicleID string, items []IssuedItem, notes string) (*Issuance, error) {
	if len(items) == 0 {
		return nil, ErrEmptyIssuance
	}

	totalLayers := 0
	allLayers := make([]IssuedLayer, 0)
	for i := range items {
		if len(items[i].Layers) == 0 {
			return nil, ErrEmptyIssuance
		}
		for j := range items[i].Layers {
			if items[i].Layers[j].Quantity <= 0 {
				return nil, ErrInvalidQuantity
			}
			items[i].Layers[j].CollectedQty = 0
			items[i].Layers[j].Collected = false
			items[i].Layers[j].CollectedAt = nil
			items[i].Layers[j].SoldQty = 0
			allLayers = append(allLayers, items[i].Layers[j])
			totalLayers++
		}
	}

	now := time.Now().UTC()
	issuance := &Issuance{
		ID:           primitive.NewObjectID(),
		IssuanceID:   issuanceID,
		VehicleID:    vehicleID,
		Items:        items,
		Status:       IssuanceStatusIssued,
		IssuedAt:     now,
		Notes:        notes,
		Version:      1,
		LastUpdated:  now,
		DomainEvents: make([]DomainEvent, 0),
	}

	issuance.addDomainEvent(&IssuanceCreatedEvent{
		IssuanceID:  issuanceID,
		VehicleID:   vehicleID,
		Items:       allLayers,
		TotalLayers: totalLayers,
		IssuedAt:    now,
	})

	return issuance, nil
}

// CollectLayer confirms physical receipt of one layer. Collection is always
// for the full issued quantity; collecting an already-collected layer is
// rejected rather than double counted.
func (iss *Issuance) CollectLayer(itemIndex, layerIndex int) error {
	if itemIndex < 0 || itemIndex >= len(iss.Items) {
		return ErrItemIndexOutOfRange
	}
	item := &iss.Items[itemIndex]
	if layerIndex < 0 || layerIndex >= len(item.Layers) {
		return ErrLayerIndexOutOfRange
	}

	layer := &item.Layers[layerIndex]
	if layer.Collected {
		return ErrLayerAlreadyCollected
	}

	now := time.Now().UTC()
	layer.Collected = true
	layer.CollectedQty = layer.Quantity
	layer.CollectedAt = &now
	iss.LastUpdated = now

	wasCollected := iss.Status == IssuanceStatusCollected
	iss.recomputeStatus(now)

	iss.addDomainEvent(&LayerCollectedEvent{
		IssuanceID:  iss.IssuanceID,
		InventoryID: item.InventoryID,
		Unit:        layer.Unit,
		Quantity:    layer.Quantity,
		Status:      string(iss.Status),
		CollectedAt: now,
	})

	if !wasCollected && iss.Status == IssuanceStatusCollected {
		iss.addDomainEvent(&IssuanceCollectedEvent{
			IssuanceID:  iss.IssuanceID,
			VehicleID:   iss.VehicleID,
			CollectedAt: now,
		})
	}

	return nil
}

// recomputeStatus derives the issuance status from its layers: collected iff
// every layer is collected, partial iff at least one is, else issued. The
// issuance-level CollectedAt is set only on entry into collected.
func (iss *Issuance) recomputeStatus(now time.Time) {
	total := 0
	collected := 0
	for i := range iss.Items {
		for j := range iss.Items[i].Layers {
			total++
			if iss.Items[i].Layers[j].Collected {
				collected++
			}
		}
	}

	switch {
	case total > 0 && collected == total:
		if iss.Status != IssuanceStatusCollected {
			iss.CollectedAt = &now
		}
		iss.Status = IssuanceStatusCollected
	case collected > 0:
		iss.Status = IssuanceStatusPartial
		iss.CollectedAt = nil
	default:
		iss.Status = IssuanceStatusIssued
		iss.CollectedAt = nil
	}
}

// AvailableForUnit sums the unsold collected quantity for an item at a unit
func (iss *Issuance) AvailableForUnit(inventoryID, unit string) int {
	total := 0
	for i := range iss.Items {
		if iss.Items[i].InventoryID != inventoryID {
			continue
		}
		for j := range iss.Items[i].Layers {
			layer := &iss.Items[i].Layers[j]
			if layer.Collected && strings.EqualFold(layer.Unit, unit) {
				total += layer.Available()
			}
		}
	}
	return total
}

// ConsumeForBreak removes up to take unsold collected units at the source
// unit from this issuance's layers and returns how many were taken. Both
// Quantity and CollectedQty shrink so the layer invariant holds.
func (iss *Issuance) ConsumeForBreak(inventoryID, sourceUnit string, take int) int {
	consumed := 0
	for i := range iss.Items {
		if iss.Items[i].InventoryID != inventoryID || consumed >= take {
			continue
		}
		for j := range iss.Items[i].Layers {
			if consumed >= take {
				break
			}
			layer := &iss.Items[i].Layers[j]
			if !layer.Collected || !strings.EqualFold(layer.Unit, sourceUnit) {
				continue
			}
			available := layer.Available()
			if available <= 0 {
				continue
			}
			c := take - consumed
			if c > available {
				c = available
			}
			layer.Quantity -= c
			if layer.CollectedQty > layer.Quantity {
				layer.CollectedQty = layer.Quantity
			}
			consumed += c
		}
	}
	if consumed > 0 {
		iss.LastUpdated = time.Now().UTC()
	}
	return consumed
}

// AddBrokenUnits credits units created by a break to the target unit on the
// matching item: an existing collected target layer absorbs them, otherwise a
// new already-collected layer is appended. Uncollected layers are never
// absorbed into; their pending quantity must not become sellable.
func (iss *Issuance) AddBrokenUnits(inventoryID string, layerIndex int, unit string, units int, sellingPrice float64) error {
	if units <= 0 {
		return ErrInvalidQuantity
	}

	now := time.Now().UTC()
	for i := range iss.Items {
		if iss.Items[i].InventoryID != inventoryID {
			continue
		}
		for j := range iss.Items[i].Layers {
			layer := &iss.Items[i].Layers[j]
			if !layer.Collected || !strings.EqualFold(layer.Unit, unit) {
				continue
			}
			layer.Quantity += units
			layer.CollectedQty += units
			iss.LastUpdated = now
			iss.recomputeStatus(now)
			return nil
		}

		iss.Items[i].Layers = append(iss.Items[i].Layers, IssuedLayer{
			LayerIndex:   layerIndex,
			Unit:         unit,
			Quantity:     units,
			SellingPrice: sellingPrice,
			CollectedQty: units,
			Collected:    true,
			CollectedAt:  &now,
			SoldQty:      0,
		})
		iss.LastUpdated = now
		iss.recomputeStatus(now)
		return nil
	}

	return ErrInventoryNotFound
}

// Deplete sells up to remaining units of an item at a unit from this
// issuance's collected layers, incrementing SoldQty. Returns how many units
// were consumed.
func (iss *Issuance) Deplete(inventoryID, unit string, remaining int) int {
	consumed := 0
	for i := range iss.Items {
		if iss.Items[i].InventoryID != inventoryID || consumed >= remaining {
			continue
		}
		for j := range iss.Items[i].Layers {
			if consumed >= remaining {
				break
			}
			layer := &iss.Items[i].Layers[j]
			if !layer.Collected || !strings.EqualFold(layer.Unit, unit) {
				continue
			}
			available := layer.Available()
			if available <= 0 {
				continue
			}
			c := remaining - consumed
			if c > available {
				c = available
			}
			layer.SoldQty += c
			consumed += c
		}
	}
	if consumed > 0 {
		iss.LastUpdated = time.Now().UTC()
	}
	return consumed
}

// addDomainEvent adds a domain event
func (iss *Issuance) addDomainEvent(event DomainEvent) {
	iss.DomainEvents = append(iss.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (iss *Issuance) GetDomainEvents() []DomainEvent {
	return iss.DomainEvents
}

// ClearDomainEvents clears all domain events
func (iss *Issuance) ClearDomainEvents() {
	iss.DomainEvents = make([]DomainEvent, 0)
}
