package domain

import (
	"context"
)

// InventoryRepository defines the interface for catalog item persistence
type InventoryRepository interface {
	// Save persists a catalog item (upsert)
	Save(ctx context.Context, item *InventoryItem) error

	// FindByID retrieves an item by its hex ObjectID
	FindByID(ctx context.Context, id string) (*InventoryItem, error)

	// FindByName retrieves an active item by exact case-insensitive name
	FindByName(ctx context.Context, productName string) (*InventoryItem, error)

	// List retrieves active items matching the filter, sorted by name
	List(ctx context.Context, filter InventoryFilter, pagination Pagination) ([]*InventoryItem, error)

	// DecrementLayerStock atomically decrements one layer's stock, refusing
	// to go below zero
	DecrementLayerStock(ctx context.Context, id string, layerIndex, quantity int) error

	// Count returns the number of items matching the filter
	Count(ctx context.Context, filter InventoryFilter) (int64, error)
}

// VehicleRepository defines the interface for vehicle persistence
type VehicleRepository interface {
	// Save persists a vehicle (upsert)
	Save(ctx context.Context, vehicle *Vehicle) error

	// FindByID retrieves a vehicle by its hex ObjectID
	FindByID(ctx context.Context, id string) (*Vehicle, error)

	// FindByRegistration retrieves a vehicle by registration number
	FindByRegistration(ctx context.Context, registrationNumber string) (*Vehicle, error)

	// List retrieves all vehicles, newest first
	List(ctx context.Context, pagination Pagination) ([]*Vehicle, error)
}

// IssuanceRepository defines the interface for issuance persistence
type IssuanceRepository interface {
	// Save inserts a new issuance
	Save(ctx context.Context, issuance *Issuance) error

	// Update persists a mutated issuance with an optimistic version check;
	// returns ErrVersionConflict when a concurrent writer got there first
	Update(ctx context.Context, issuance *Issuance) error

	// FindByIssuanceID retrieves an issuance by its business key
	FindByIssuanceID(ctx context.Context, issuanceID string) (*Issuance, error)

	// FindByVehicleID retrieves a vehicle's issuances, newest first
	FindByVehicleID(ctx context.Context, vehicleID string, pagination Pagination) ([]*Issuance, error)

	// FindByVehicleIDOldestFirst retrieves a vehicle's issuances ascending by
	// issuedAt, the order sale depletion and break-unit consume in
	FindByVehicleIDOldestFirst(ctx context.Context, vehicleID string) ([]*Issuance, error)
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// Save inserts a new sale
	Save(ctx context.Context, sale *Sale) error

	// FindBySaleID retrieves a sale by its business key
	FindBySaleID(ctx context.Context, saleID string) (*Sale, error)

	// List retrieves sales matching the filter, newest first
	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)
}

// InventoryFilter represents filter options for querying catalog items
type InventoryFilter struct {
	Search         *string
	Category       *string
	IncludeDeleted bool
}

// SaleFilter represents filter options for querying sales
type SaleFilter struct {
	VehicleID *string
	Date      *string
	FromDate  *string
	ToDate    *string
	Limit     int64
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 50,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish publishes a domain event
	Publish(ctx context.Context, event DomainEvent) error

	// PublishAll publishes multiple domain events
	PublishAll(ctx context.Context, events []DomainEvent) error
}
