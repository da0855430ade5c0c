package events

import (
	"time"
)

// EventType constants for ledger domain events
const (
	// Issuance events
	IssuanceCreated   = "ledger.issuance.created"
	LayerCollected    = "ledger.issuance.layer-collected"
	IssuanceCollected = "ledger.issuance.collected"
	UnitBroken        = "ledger.unit.broken"

	// Sales events
	SaleRecorded = "ledger.sale.recorded"

	// Inventory events
	InventoryCreated  = "ledger.inventory.created"
	InventoryUpdated  = "ledger.inventory.updated"
	InventoryDeleted  = "ledger.inventory.deleted"
	InventoryRestored = "ledger.inventory.restored"
	LowStockAlert     = "ledger.inventory.low-stock"

	// Vehicle events
	VehicleRegistered = "ledger.vehicle.registered"
	VehicleUpdated    = "ledger.vehicle.updated"
)

// Source constants for event sources
const (
	SourceIssuance  = "/migingo/issuance"
	SourceSales     = "/migingo/sales"
	SourceInventory = "/migingo/inventory"
	SourceVehicle   = "/migingo/vehicle"
	SourceLedger    = "/migingo/ledger"
)

// Event represents a CloudEvents v1.0 compliant event envelope
type Event struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// Propagated request correlation
	CorrelationID string `json:"correlationid,omitempty"`
}
