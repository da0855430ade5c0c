package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// IssuanceCreatedEvent is emitted when stock is issued to a vehicle
type IssuanceCreatedEvent struct {
	IssuanceID  string        `json:"issuanceId"`
	VehicleID   string        `json:"vehicleId"`
	Items       []IssuedLayer `json:"items"`
	TotalLayers int           `json:"totalLayers"`
	IssuedAt    time.Time     `json:"issuedAt"`
}

func (e *IssuanceCreatedEvent) EventType() string     { return "ledger.issuance.created" }
func (e *IssuanceCreatedEvent) OccurredAt() time.Time { return e.IssuedAt }

// LayerCollectedEvent is emitted when a vehicle operator confirms receipt of a layer
type LayerCollectedEvent struct {
	IssuanceID  string    `json:"issuanceId"`
	InventoryID string    `json:"inventoryId"`
	Unit        string    `json:"unit"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"`
	CollectedAt time.Time `json:"collectedAt"`
}

func (e *LayerCollectedEvent) EventType() string     { return "ledger.issuance.layer-collected" }
func (e *LayerCollectedEvent) OccurredAt() time.Time { return e.CollectedAt }

// IssuanceCollectedEvent is emitted when every layer of an issuance has been collected
type IssuanceCollectedEvent struct {
	IssuanceID  string    `json:"issuanceId"`
	VehicleID   string    `json:"vehicleId"`
	CollectedAt time.Time `json:"collectedAt"`
}

func (e *IssuanceCollectedEvent) EventType() string     { return "ledger.issuance.collected" }
func (e *IssuanceCollectedEvent) OccurredAt() time.Time { return e.CollectedAt }

// UnitBrokenEvent is emitted when collected stock is converted into a smaller unit
type UnitBrokenEvent struct {
	VehicleID    string    `json:"vehicleId"`
	InventoryID  string    `json:"inventoryId"`
	FromUnit     string    `json:"fromUnit"`
	ToUnit       string    `json:"toUnit"`
	Quantity     int       `json:"quantity"`
	UnitsCreated int       `json:"unitsCreated"`
	BrokenAt     time.Time `json:"brokenAt"`
}

func (e *UnitBrokenEvent) EventType() string     { return "ledger.unit.broken" }
func (e *UnitBrokenEvent) OccurredAt() time.Time { return e.BrokenAt }

// SaleRecordedEvent is emitted when a sale depletes collected stock
type SaleRecordedEvent struct {
	SaleID        string    `json:"saleId"`
	VehicleID     string    `json:"vehicleId"`
	InventoryID   string    `json:"inventoryId"`
	ProductName   string    `json:"productName"`
	Unit          string    `json:"unit"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unitPrice"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod"`
	SoldAt        time.Time `json:"soldAt"`
}

func (e *SaleRecordedEvent) EventType() string     { return "ledger.sale.recorded" }
func (e *SaleRecordedEvent) OccurredAt() time.Time { return e.SoldAt }

// InventoryCreatedEvent is emitted when a catalog item is created
type InventoryCreatedEvent struct {
	InventoryID string    `json:"inventoryId"`
	ProductName string    `json:"productName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e *InventoryCreatedEvent) EventType() string     { return "ledger.inventory.created" }
func (e *InventoryCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// InventoryUpdatedEvent is emitted when a catalog item changes
type InventoryUpdatedEvent struct {
	InventoryID string    `json:"inventoryId"`
	ProductName string    `json:"productName"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *InventoryUpdatedEvent) EventType() string     { return "ledger.inventory.updated" }
func (e *InventoryUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }

// InventoryDeletedEvent is emitted when a catalog item is soft deleted
type InventoryDeletedEvent struct {
	InventoryID string    `json:"inventoryId"`
	ProductName string    `json:"productName"`
	DeletedAt   time.Time `json:"deletedAt"`
}

func (e *InventoryDeletedEvent) EventType() string     { return "ledger.inventory.deleted" }
func (e *InventoryDeletedEvent) OccurredAt() time.Time { return e.DeletedAt }

// InventoryRestoredEvent is emitted when a soft-deleted catalog item is restored
type InventoryRestoredEvent struct {
	InventoryID string    `json:"inventoryId"`
	ProductName string    `json:"productName"`
	RestoredAt  time.Time `json:"restoredAt"`
}

func (e *InventoryRestoredEvent) EventType() string     { return "ledger.inventory.restored" }
func (e *InventoryRestoredEvent) OccurredAt() time.Time { return e.RestoredAt }

// LowStockEvent is emitted when catalog stock for a layer falls below its threshold
type LowStockEvent struct {
	InventoryID string    `json:"inventoryId"`
	ProductName string    `json:"productName"`
	Unit        string    `json:"unit"`
	Remaining   int       `json:"remaining"`
	Threshold   int       `json:"threshold"`
	DetectedAt  time.Time `json:"detectedAt"`
}

func (e *LowStockEvent) EventType() string     { return "ledger.inventory.low-stock" }
func (e *LowStockEvent) OccurredAt() time.Time { return e.DetectedAt }

// VehicleRegisteredEvent is emitted when a vehicle is registered
type VehicleRegisteredEvent struct {
	VehicleID    string    `json:"vehicleId"`
	PlateNumber  string    `json:"plateNumber"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func (e *VehicleRegisteredEvent) EventType() string     { return "ledger.vehicle.registered" }
func (e *VehicleRegisteredEvent) OccurredAt() time.Time { return e.RegisteredAt }

// VehicleUpdatedEvent is emitted when vehicle details change
type VehicleUpdatedEvent struct {
	VehicleID   string    `json:"vehicleId"`
	PlateNumber string    `json:"plateNumber"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *VehicleUpdatedEvent) EventType() string     { return "ledger.vehicle.updated" }
func (e *VehicleUpdatedEvent) OccurredAt() time.Time { return e.UpdatedAt }
