package projections

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStockProjection is a denormalized read model of one vehicle's
// effective stock, rebuilt from its issuances whenever a ledger event for
// that vehicle arrives
type VehicleStockProjection struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID string             `bson:"vehicleId" json:"vehicleId"`
	Entries   []StockEntry       `bson:"entries" json:"entries"`

	// Issuance counts by status
	IssuedCount    int `bson:"issuedCount" json:"issuedCount"`
	PartialCount   int `bson:"partialCount" json:"partialCount"`
	CollectedCount int `bson:"collectedCount" json:"collectedCount"`

	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StockEntry is one (inventoryId, unit) row of a vehicle's stock
type StockEntry struct {
	InventoryID  string  `bson:"inventoryId" json:"inventoryId"`
	ProductName  string  `bson:"productName" json:"productName"`
	Unit         string  `bson:"unit" json:"unit"`
	CollectedQty int     `bson:"collectedQty" json:"collectedQty"`
	SoldQty      int     `bson:"soldQty" json:"soldQty"`
	Available    int     `bson:"available" json:"available"`
	SellingPrice float64 `bson:"sellingPrice" json:"sellingPrice"`
}
