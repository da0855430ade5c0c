package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryItem represents a catalog item in the central inventory. Stock is
// tracked per packaging layer, denominated in that layer's unit.
type InventoryItem struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductName        string             `bson:"productName" json:"productName"`
	ProductNameLower   string             `bson:"productNameLower" json:"-"`
	Supplier           string             `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Category           string             `bson:"category,omitempty" json:"category,omitempty"`
	BuyingPricePerUnit float64            `bson:"buyingPricePerUnit" json:"buyingPricePerUnit"`
	LowStockAlert      int                `bson:"lowStockAlert" json:"lowStockAlert"`
	IsActive           bool               `bson:"isActive" json:"isActive"`
	IsDeleted          bool               `bson:"isDeleted" json:"-"`
	DeletedAt          *time.Time         `bson:"deletedAt,omitempty" json:"-"`
	PackagingStructure PackagingStructure `bson:"packagingStructure" json:"packagingStructure"`
	DateAdded          time.Time          `bson:"dateAdded" json:"dateAdded"`
	LastUpdated        time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	DomainEvents       []DomainEvent      `bson:"-" json:"-"`
}

// NewInventoryItem creates a catalog item with per-layer stock
func NewInventoryItem(productName, supplier, category string, buyingPrice float64, lowStockAlert int, packaging PackagingStructure) (*InventoryItem, error) {
	if strings.TrimSpace(productName) == "" {
		return nil, ErrInvalidPackaging
	}
	if err := packaging.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &InventoryItem{
		ID:                 primitive.NewObjectID(),
		ProductName:        productName,
		ProductNameLower:   strings.ToLower(productName),
		Supplier:           supplier,
		Category:           category,
		BuyingPricePerUnit: buyingPrice,
		LowStockAlert:      lowStockAlert,
		IsActive:           true,
		PackagingStructure: packaging,
		DateAdded:          now,
		LastUpdated:        now,
		DomainEvents:       make([]DomainEvent, 0),
	}

	item.addDomainEvent(&InventoryCreatedEvent{
		InventoryID: item.ID.Hex(),
		ProductName: productName,
		CreatedAt:   now,
	})

	return item, nil
}

// Update replaces the editable fields of the item
func (i *InventoryItem) Update(productName, supplier, category string, buyingPrice float64, lowStockAlert int, packaging PackagingStructure) error {
	if i.IsDeleted {
		return ErrItemDeleted
	}
	if strings.TrimSpace(productName) == "" {
		return ErrInvalidPackaging
	}
	if err := packaging.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	i.ProductName = productName
	i.ProductNameLower = strings.ToLower(productName)
	i.Supplier = supplier
	i.Category = category
	i.BuyingPricePerUnit = buyingPrice
	i.LowStockAlert = lowStockAlert
	i.PackagingStructure = packaging
	i.LastUpdated = now

	i.addDomainEvent(&InventoryUpdatedEvent{
		InventoryID: i.ID.Hex(),
		ProductName: productName,
		UpdatedAt:   now,
	})

	return nil
}

// SoftDelete marks the item deleted without removing the document
func (i *InventoryItem) SoftDelete() error {
	if i.IsDeleted {
		return ErrItemDeleted
	}

	now := time.Now().UTC()
	i.IsDeleted = true
	i.IsActive = false
	i.DeletedAt = &now
	i.LastUpdated = now

	i.addDomainEvent(&InventoryDeletedEvent{
		InventoryID: i.ID.Hex(),
		ProductName: i.ProductName,
		DeletedAt:   now,
	})

	return nil
}

// Restore reactivates a soft-deleted item
func (i *InventoryItem) Restore() error {
	if !i.IsDeleted {
		return ErrItemNotDeleted
	}

	now := time.Now().UTC()
	i.IsDeleted = false
	i.IsActive = true
	i.DeletedAt = nil
	i.LastUpdated = now

	i.addDomainEvent(&InventoryRestoredEvent{
		InventoryID: i.ID.Hex(),
		ProductName: i.ProductName,
		RestoredAt:  now,
	})

	return nil
}

// LayerStock returns the on-hand quantity at the given layer
func (i *InventoryItem) LayerStock(layerIndex int) (int, error) {
	if layerIndex < 0 || layerIndex >= len(i.PackagingStructure) {
		return 0, ErrLayerIndexOutOfRange
	}
	return i.PackagingStructure[layerIndex].Stock, nil
}

// DecrementLayerStock removes quantity from a layer's stock. The caller must
// have validated availability first; this re-checks and never goes negative.
// Emits a low-stock event when the remaining stock lands at or below the
// alert threshold.
func (i *InventoryItem) DecrementLayerStock(layerIndex, quantity int) error {
	if layerIndex < 0 || layerIndex >= len(i.PackagingStructure) {
		return ErrLayerIndexOutOfRange
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.PackagingStructure[layerIndex].Stock < quantity {
		return ErrInsufficientStock
	}

	i.PackagingStructure[layerIndex].Stock -= quantity
	i.LastUpdated = time.Now().UTC()

	if i.LowStockAlert > 0 && i.PackagingStructure[layerIndex].Stock <= i.LowStockAlert {
		i.addDomainEvent(&LowStockEvent{
			InventoryID: i.ID.Hex(),
			ProductName: i.ProductName,
			Unit:        i.PackagingStructure[layerIndex].Unit,
			Remaining:   i.PackagingStructure[layerIndex].Stock,
			Threshold:   i.LowStockAlert,
			DetectedAt:  i.LastUpdated,
		})
	}

	return nil
}

// IncrementLayerStock adds quantity back to a layer's stock
func (i *InventoryItem) IncrementLayerStock(layerIndex, quantity int) error {
	if layerIndex < 0 || layerIndex >= len(i.PackagingStructure) {
		return ErrLayerIndexOutOfRange
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	i.PackagingStructure[layerIndex].Stock += quantity
	i.LastUpdated = time.Now().UTC()
	return nil
}

// BreakCentralStock converts central stock at a larger layer into stock at a
// smaller nested layer on the same item. Returns the units created and the
// conversion ratio applied.
func (i *InventoryItem) BreakCentralStock(sourceUnit, targetUnit string, quantity int) (int, int, error) {
	if quantity <= 0 {
		return 0, 0, ErrInvalidQuantity
	}

	sourceIndex := i.PackagingStructure.FindLayerIndex(sourceUnit)
	targetIndex := i.PackagingStructure.FindLayerIndex(targetUnit)
	if sourceIndex < 0 || targetIndex < 0 {
		return 0, 0, ErrLayerNotFound
	}

	ratio, err := i.PackagingStructure.ConversionRatio(sourceIndex, targetIndex)
	if err != nil {
		return 0, 0, err
	}

	if i.PackagingStructure[sourceIndex].Stock < quantity {
		return 0, 0, ErrInsufficientStock
	}

	unitsCreated := quantity * ratio
	i.PackagingStructure[sourceIndex].Stock -= quantity
	i.PackagingStructure[targetIndex].Stock += unitsCreated
	i.LastUpdated = time.Now().UTC()

	i.addDomainEvent(&UnitBrokenEvent{
		InventoryID:  i.ID.Hex(),
		FromUnit:     i.PackagingStructure[sourceIndex].Unit,
		ToUnit:       i.PackagingStructure[targetIndex].Unit,
		Quantity:     quantity,
		UnitsCreated: unitsCreated,
		BrokenAt:     i.LastUpdated,
	})

	return unitsCreated, ratio, nil
}

// addDomainEvent adds a domain event
func (i *InventoryItem) addDomainEvent(event DomainEvent) {
	i.DomainEvents = append(i.DomainEvents, event)
}

// GetDomainEvents returns all domain events
func (i *InventoryItem) GetDomainEvents() []DomainEvent {
	return i.DomainEvents
}

// ClearDomainEvents clears all domain events
func (i *InventoryItem) ClearDomainEvents() {
	i.DomainEvents = make([]DomainEvent, 0)
}
