package application

import (
	"context"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// InventorySnapshotPublisher pushes fresh catalog snapshots to stream
// subscribers after each inventory mutation
type InventorySnapshotPublisher interface {
	PublishInventorySnapshot(ctx context.Context, items []*domain.InventoryItem)
}

// InventoryService implements the application layer for the central catalog
type InventoryService struct {
	inventoryRepo domain.InventoryRepository
	publisher     domain.EventPublisher
	snapshots     InventorySnapshotPublisher
	tx            TxRunner
	logger        *logging.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	inventoryRepo domain.InventoryRepository,
	publisher domain.EventPublisher,
	snapshots InventorySnapshotPublisher,
	tx TxRunner,
	logger *logging.Logger,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		publisher:     publisher,
		snapshots:     snapshots,
		tx:            tx,
		logger:        logger,
	}
}

// PackagingLayerRequest is one layer of a requested packaging structure
type PackagingLayerRequest struct {
	Unit         string
	Qty          int
	Stock        int
	SellingPrice float64
}

// CreateInventoryItemCommand represents the command to create a catalog item
type CreateInventoryItemCommand struct {
	ProductName        string
	Supplier           string
	Category           string
	BuyingPricePerUnit float64
	LowStockAlert      int
	Packaging          []PackagingLayerRequest
}

// CreateInventoryItem creates a catalog item. An active item with the same
// name (case-insensitive) is a conflict.
func (s *InventoryService) CreateInventoryItem(ctx context.Context, cmd CreateInventoryItemCommand) (*domain.InventoryItem, error) {
	existing, err := s.inventoryRepo.FindByName(ctx, cmd.ProductName)
	if err != nil {
		return nil, errors.ErrInternal("failed to check product name").Wrap(err)
	}
	if existing != nil {
		return nil, errors.ErrConflict("a product with this name already exists")
	}

	item, err := domain.NewInventoryItem(
		cmd.ProductName, cmd.Supplier, cmd.Category,
		cmd.BuyingPricePerUnit, cmd.LowStockAlert,
		toPackagingStructure(cmd.Packaging),
	)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		s.logger.WithError(err).Error("Failed to save inventory item")
		return nil, errors.ErrInternal("failed to save inventory item").Wrap(err)
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()
	s.publishSnapshot(ctx)

	s.logger.Info("Created inventory item",
		"inventoryId", item.ID.Hex(),
		"productName", item.ProductName,
		"layers", len(item.PackagingStructure),
	)

	return item, nil
}

// UpdateInventoryItemCommand represents the command to update a catalog item
type UpdateInventoryItemCommand struct {
	InventoryID        string
	ProductName        string
	Supplier           string
	Category           string
	BuyingPricePerUnit float64
	LowStockAlert      int
	Packaging          []PackagingLayerRequest
}

// UpdateInventoryItem replaces the editable fields of a catalog item
func (s *InventoryService) UpdateInventoryItem(ctx context.Context, cmd UpdateInventoryItemCommand) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, cmd.InventoryID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("inventory item", cmd.InventoryID)
	}

	if item.ProductNameLower != normalizeUnit(cmd.ProductName) {
		existing, err := s.inventoryRepo.FindByName(ctx, cmd.ProductName)
		if err != nil {
			return nil, errors.ErrInternal("failed to check product name").Wrap(err)
		}
		if existing != nil {
			return nil, errors.ErrConflict("a product with this name already exists")
		}
	}

	if err := item.Update(
		cmd.ProductName, cmd.Supplier, cmd.Category,
		cmd.BuyingPricePerUnit, cmd.LowStockAlert,
		toPackagingStructure(cmd.Packaging),
	); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, errors.ErrInternal("failed to save inventory item").Wrap(err)
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()
	s.publishSnapshot(ctx)

	return item, nil
}

// DeleteInventoryItem soft deletes a catalog item
func (s *InventoryService) DeleteInventoryItem(ctx context.Context, inventoryID string) error {
	item, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return errors.ErrInternal("failed to load inventory item").Wrap(err)
	}
	if item == nil {
		return errors.ErrNotFoundWithID("inventory item", inventoryID)
	}

	if err := item.SoftDelete(); err != nil {
		return errors.MapDomainError(err)
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return errors.ErrInternal("failed to delete inventory item").Wrap(err)
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()
	s.publishSnapshot(ctx)

	s.logger.Info("Deleted inventory item", "inventoryId", inventoryID, "productName", item.ProductName)
	return nil
}

// RestoreInventoryItem reactivates a soft-deleted catalog item
func (s *InventoryService) RestoreInventoryItem(ctx context.Context, inventoryID string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("inventory item", inventoryID)
	}

	if err := item.Restore(); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.inventoryRepo.Save(ctx, item); err != nil {
		return nil, errors.ErrInternal("failed to restore inventory item").Wrap(err)
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()
	s.publishSnapshot(ctx)

	return item, nil
}

// BreakCentralStockCommand represents the command to move central stock from
// a larger layer to a smaller one on the same item
type BreakCentralStockCommand struct {
	InventoryID string
	SourceUnit  string
	TargetUnit  string
	Quantity    int
}

// BreakCentralStock converts central catalog stock between layers of one
// item inside a transaction
func (s *InventoryService) BreakCentralStock(ctx context.Context, cmd BreakCentralStockCommand) (*BreakUnitResult, error) {
	var result BreakUnitResult
	var item *domain.InventoryItem

	err := s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		loaded, err := s.inventoryRepo.FindByID(txCtx, cmd.InventoryID)
		if err != nil {
			return err
		}
		if loaded == nil {
			return domain.ErrInventoryNotFound
		}
		item = loaded

		unitsCreated, ratio, err := item.BreakCentralStock(cmd.SourceUnit, cmd.TargetUnit, cmd.Quantity)
		if err != nil {
			return err
		}
		result = BreakUnitResult{UnitsCreated: unitsCreated, ConversionRatio: ratio}

		return s.inventoryRepo.Save(txCtx, item)
	})
	if err != nil {
		switch err {
		case domain.ErrInventoryNotFound:
			return nil, errors.ErrNotFoundWithID("inventory item", cmd.InventoryID)
		case domain.ErrLayerNotFound:
			return nil, errors.ErrValidation("unknown unit for this product")
		case domain.ErrInvalidConversion:
			return nil, errors.ErrInvalidConversion("cannot convert between these units")
		case domain.ErrInsufficientStock:
			return nil, errors.MapDomainError(err)
		case domain.ErrInvalidQuantity:
			return nil, errors.ErrValidation("quantity must be greater than zero")
		default:
			s.logger.WithError(err).Error("Failed to break central stock", "inventoryId", cmd.InventoryID)
			return nil, errors.ErrInternal("failed to break central stock").Wrap(err)
		}
	}

	s.publishEvents(ctx, item.GetDomainEvents())
	item.ClearDomainEvents()
	s.publishSnapshot(ctx)

	return &result, nil
}

// GetInventoryItem retrieves a catalog item by ID
func (s *InventoryService) GetInventoryItem(ctx context.Context, inventoryID string) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, inventoryID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
	}
	if item == nil || item.IsDeleted {
		return nil, errors.ErrNotFoundWithID("inventory item", inventoryID)
	}
	return item, nil
}

// ListInventory retrieves active catalog items matching the filter
func (s *InventoryService) ListInventory(ctx context.Context, filter domain.InventoryFilter, pagination domain.Pagination) ([]*domain.InventoryItem, error) {
	items, err := s.inventoryRepo.List(ctx, filter, pagination)
	if err != nil {
		return nil, errors.ErrInternal("failed to list inventory").Wrap(err)
	}
	return items, nil
}

// publishSnapshot pushes the current active catalog to stream subscribers
func (s *InventoryService) publishSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	items, err := s.inventoryRepo.List(ctx, domain.InventoryFilter{}, domain.Pagination{Page: 1, PageSize: 1000})
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load inventory snapshot for stream")
		return
	}
	s.snapshots.PublishInventorySnapshot(ctx, items)
}

// publishEvents publishes domain events, logging failures without failing
// the operation that produced them
func (s *InventoryService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events", "count", len(events))
	}
}

// toPackagingStructure converts layer requests into the domain value type
func toPackagingStructure(layers []PackagingLayerRequest) domain.PackagingStructure {
	packaging := make(domain.PackagingStructure, 0, len(layers))
	for _, layer := range layers {
		packaging = append(packaging, domain.PackagingLayer{
			Unit:         layer.Unit,
			Qty:          layer.Qty,
			Stock:        layer.Stock,
			SellingPrice: layer.SellingPrice,
		})
	}
	return packaging
}
