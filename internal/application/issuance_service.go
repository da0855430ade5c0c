package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// IssuanceService implements the application layer for the issuance
// lifecycle: creation, collection, and break-unit transfers.
type IssuanceService struct {
	issuanceRepo  domain.IssuanceRepository
	inventoryRepo domain.InventoryRepository
	vehicleRepo   domain.VehicleRepository
	publisher     domain.EventPublisher
	tx            TxRunner
	logger        *logging.Logger
}

// NewIssuanceService creates a new IssuanceService
func NewIssuanceService(
	issuanceRepo domain.IssuanceRepository,
	inventoryRepo domain.InventoryRepository,
	vehicleRepo domain.VehicleRepository,
	publisher domain.EventPublisher,
	tx TxRunner,
	logger *logging.Logger,
) *IssuanceService {
	return &IssuanceService{
		issuanceRepo:  issuanceRepo,
		inventoryRepo: inventoryRepo,
		vehicleRepo:   vehicleRepo,
		publisher:     publisher,
		tx:            tx,
		logger:        logger,
	}
}

// IssuanceLayerRequest is one requested layer of an issuance item
type IssuanceLayerRequest struct {
	LayerIndex int
	Quantity   int
}

// IssuanceItemRequest is one requested item of an issuance
type IssuanceItemRequest struct {
	InventoryID string
	Layers      []IssuanceLayerRequest
}

// CreateIssuanceCommand represents the command to issue stock to a vehicle
type CreateIssuanceCommand struct {
	VehicleID string
	Items     []IssuanceItemRequest
	Notes     string
}

// CreateIssuance validates every requested item and layer against current
// catalog stock, then decrements stock and inserts the issuance inside one
// transaction. No stock moves when any layer fails validation. Selling
// prices are frozen from the packaging structure at issuance time.
func (s *IssuanceService) CreateIssuance(ctx context.Context, cmd CreateIssuanceCommand) (*domain.Issuance, error) {
	if len(cmd.Items) == 0 {
		return nil, errors.ErrValidation("issuance requires at least one item")
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, cmd.VehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load vehicle").Wrap(err)
	}
	if vehicle == nil {
		return nil, errors.ErrNotFoundWithID("vehicle", cmd.VehicleID)
	}
	if !vehicle.IsActive {
		return nil, errors.ErrValidation("vehicle is not active")
	}

	// Validate everything before touching any stock
	catalogItems := make([]*domain.InventoryItem, len(cmd.Items))
	issuedItems := make([]domain.IssuedItem, 0, len(cmd.Items))
	for i, req := range cmd.Items {
		item, err := s.inventoryRepo.FindByID(ctx, req.InventoryID)
		if err != nil {
			return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
		}
		if item == nil || item.IsDeleted {
			return nil, errors.ErrNotFoundWithID("inventory item", req.InventoryID)
		}
		catalogItems[i] = item

		if len(req.Layers) == 0 {
			return nil, errors.ErrValidation("item requires at least one layer")
		}

		issued := domain.IssuedItem{
			InventoryID: req.InventoryID,
			ProductName: item.ProductName,
			BuyingPrice: item.BuyingPricePerUnit,
			Layers:      make([]domain.IssuedLayer, 0, len(req.Layers)),
		}
		for _, layerReq := range req.Layers {
			if layerReq.Quantity <= 0 {
				return nil, errors.ErrValidation("layer quantity must be greater than zero")
			}
			stock, err := item.LayerStock(layerReq.LayerIndex)
			if err != nil {
				return nil, errors.ErrValidation(fmt.Sprintf("layer index %d does not exist on %s", layerReq.LayerIndex, item.ProductName))
			}
			if stock < layerReq.Quantity {
				return nil, errors.ErrInsufficientStock(item.ProductName, stock, layerReq.Quantity)
			}
			layer := item.PackagingStructure[layerReq.LayerIndex]
			issued.Layers = append(issued.Layers, domain.IssuedLayer{
				LayerIndex:   layerReq.LayerIndex,
				Unit:         layer.Unit,
				Quantity:     layerReq.Quantity,
				SellingPrice: layer.SellingPrice,
			})
		}
		issuedItems = append(issuedItems, issued)
	}

	issuanceID := fmt.Sprintf("ISS-%s", uuid.New().String()[:8])
	issuance, err := domain.NewIssuance(issuanceID, cmd.VehicleID, issuedItems, cmd.Notes)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	// Apply decrements on the loaded aggregates so low-stock events fire,
	// then persist stock moves and the issuance atomically
	for i, req := range cmd.Items {
		for _, layerReq := range req.Layers {
			if err := catalogItems[i].DecrementLayerStock(layerReq.LayerIndex, layerReq.Quantity); err != nil {
				return nil, errors.MapDomainError(err)
			}
		}
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, req := range cmd.Items {
			for _, layerReq := range req.Layers {
				if err := s.inventoryRepo.DecrementLayerStock(txCtx, req.InventoryID, layerReq.LayerIndex, layerReq.Quantity); err != nil {
					return err
				}
			}
		}
		return s.issuanceRepo.Save(txCtx, issuance)
	})
	if err != nil {
		if err == domain.ErrInsufficientStock {
			return nil, errors.MapDomainError(err)
		}
		s.logger.WithError(err).Error("Failed to create issuance", "vehicleId", cmd.VehicleID)
		return nil, errors.ErrInternal("failed to create issuance").Wrap(err)
	}

	s.publishEvents(ctx, issuance.GetDomainEvents())
	issuance.ClearDomainEvents()
	for _, item := range catalogItems {
		s.publishEvents(ctx, item.GetDomainEvents())
		item.ClearDomainEvents()
	}

	s.logger.Info("Created issuance",
		"issuanceId", issuance.IssuanceID,
		"vehicleId", cmd.VehicleID,
		"items", len(issuance.Items),
	)

	return issuance, nil
}

// CollectLayerCommand represents the command to confirm receipt of a layer
type CollectLayerCommand struct {
	IssuanceID string
	ItemIndex  int
	LayerIndex int
}

// CollectLayer marks one issued layer as physically received, always for its
// full quantity, and recomputes the issuance status
func (s *IssuanceService) CollectLayer(ctx context.Context, cmd CollectLayerCommand) (*domain.Issuance, error) {
	issuance, err := s.issuanceRepo.FindByIssuanceID(ctx, cmd.IssuanceID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load issuance").Wrap(err)
	}
	if issuance == nil {
		return nil, errors.ErrNotFoundWithID("issuance", cmd.IssuanceID)
	}

	if err := issuance.CollectLayer(cmd.ItemIndex, cmd.LayerIndex); err != nil {
		switch err {
		case domain.ErrItemIndexOutOfRange, domain.ErrLayerIndexOutOfRange:
			return nil, errors.ErrNotFound("issuance layer")
		case domain.ErrLayerAlreadyCollected:
			return nil, errors.ErrConflict("layer already collected")
		default:
			return nil, errors.MapDomainError(err)
		}
	}

	if err := s.issuanceRepo.Update(ctx, issuance); err != nil {
		if err == domain.ErrVersionConflict {
			return nil, errors.ErrConflict("issuance was modified concurrently, retry")
		}
		return nil, errors.ErrInternal("failed to update issuance").Wrap(err)
	}

	s.publishEvents(ctx, issuance.GetDomainEvents())
	issuance.ClearDomainEvents()

	s.logger.Info("Collected issuance layer",
		"issuanceId", issuance.IssuanceID,
		"itemIndex", cmd.ItemIndex,
		"layerIndex", cmd.LayerIndex,
		"status", issuance.Status,
	)

	return issuance, nil
}

// BreakUnitCommand represents the command to convert collected stock from a
// larger unit to a smaller one within a vehicle's collected pool
type BreakUnitCommand struct {
	VehicleID   string
	InventoryID string
	SourceUnit  string
	TargetUnit  string
	Quantity    int
}

// BreakUnitResult reports the outcome of a break-unit transfer
type BreakUnitResult struct {
	UnitsCreated    int `json:"unitsCreated"`
	ConversionRatio int `json:"conversionRatio"`
}

// BreakUnit converts already-collected stock at the source unit into stock at
// the target unit, consuming issuances oldest-issued-first and writing every
// touched issuance in one transaction. Only unsold quantity may be broken.
func (s *IssuanceService) BreakUnit(ctx context.Context, cmd BreakUnitCommand) (*BreakUnitResult, error) {
	if cmd.Quantity <= 0 {
		return nil, errors.ErrValidation("quantity must be greater than zero")
	}

	item, err := s.inventoryRepo.FindByID(ctx, cmd.InventoryID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
	}
	if item == nil {
		return nil, errors.ErrNotFoundWithID("inventory item", cmd.InventoryID)
	}

	sourceIndex := item.PackagingStructure.FindLayerIndex(cmd.SourceUnit)
	targetIndex := item.PackagingStructure.FindLayerIndex(cmd.TargetUnit)
	if sourceIndex < 0 {
		return nil, errors.ErrValidation(fmt.Sprintf("unknown unit %q for %s", cmd.SourceUnit, item.ProductName))
	}
	if targetIndex < 0 {
		return nil, errors.ErrValidation(fmt.Sprintf("unknown unit %q for %s", cmd.TargetUnit, item.ProductName))
	}

	ratio, err := item.PackagingStructure.ConversionRatio(sourceIndex, targetIndex)
	if err != nil {
		return nil, errors.ErrInvalidConversion(fmt.Sprintf("cannot convert %s to %s", cmd.SourceUnit, cmd.TargetUnit))
	}

	issuances, err := s.issuanceRepo.FindByVehicleIDOldestFirst(ctx, cmd.VehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load issuances").Wrap(err)
	}

	totalAvailable := 0
	for _, iss := range issuances {
		totalAvailable += iss.AvailableForUnit(cmd.InventoryID, cmd.SourceUnit)
	}
	if totalAvailable < cmd.Quantity {
		return nil, errors.ErrInsufficientStock(cmd.SourceUnit, totalAvailable, cmd.Quantity)
	}

	targetUnit := item.PackagingStructure[targetIndex].Unit
	targetPrice := item.PackagingStructure[targetIndex].SellingPrice

	touched := make([]*domain.Issuance, 0)
	remaining := cmd.Quantity
	for _, iss := range issuances {
		if remaining <= 0 {
			break
		}
		consumed := iss.ConsumeForBreak(cmd.InventoryID, cmd.SourceUnit, remaining)
		if consumed == 0 {
			continue
		}
		if err := iss.AddBrokenUnits(cmd.InventoryID, targetIndex, targetUnit, consumed*ratio, targetPrice); err != nil {
			return nil, errors.ErrInternal("failed to credit broken units").Wrap(err)
		}
		remaining -= consumed
		touched = append(touched, iss)
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, iss := range touched {
			if err := s.issuanceRepo.Update(txCtx, iss); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if err == domain.ErrVersionConflict {
			return nil, errors.ErrConflict("issuance was modified concurrently, retry")
		}
		s.logger.WithError(err).Error("Failed to persist break-unit transfer", "vehicleId", cmd.VehicleID)
		return nil, errors.ErrInternal("failed to persist break-unit transfer").Wrap(err)
	}

	unitsCreated := cmd.Quantity * ratio
	s.publishEvents(ctx, []domain.DomainEvent{&domain.UnitBrokenEvent{
		VehicleID:    cmd.VehicleID,
		InventoryID:  cmd.InventoryID,
		FromUnit:     item.PackagingStructure[sourceIndex].Unit,
		ToUnit:       targetUnit,
		Quantity:     cmd.Quantity,
		UnitsCreated: unitsCreated,
		BrokenAt:     time.Now().UTC(),
	}})

	s.logger.Info("Broke units",
		"vehicleId", cmd.VehicleID,
		"inventoryId", cmd.InventoryID,
		"fromUnit", cmd.SourceUnit,
		"toUnit", cmd.TargetUnit,
		"quantity", cmd.Quantity,
		"unitsCreated", unitsCreated,
	)

	return &BreakUnitResult{UnitsCreated: unitsCreated, ConversionRatio: ratio}, nil
}

// ListIssuances retrieves a vehicle's issuances, newest first
func (s *IssuanceService) ListIssuances(ctx context.Context, vehicleID string, pagination domain.Pagination) ([]*domain.Issuance, error) {
	issuances, err := s.issuanceRepo.FindByVehicleID(ctx, vehicleID, pagination)
	if err != nil {
		return nil, errors.ErrInternal("failed to list issuances").Wrap(err)
	}
	return issuances, nil
}

// GetIssuance retrieves an issuance by its business key
func (s *IssuanceService) GetIssuance(ctx context.Context, issuanceID string) (*domain.Issuance, error) {
	issuance, err := s.issuanceRepo.FindByIssuanceID(ctx, issuanceID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load issuance").Wrap(err)
	}
	if issuance == nil {
		return nil, errors.ErrNotFoundWithID("issuance", issuanceID)
	}
	return issuance, nil
}

// CollectedItem is one row of a vehicle's effective stock: collected layers
// merged by (inventoryId, unit) across every issuance
type CollectedItem struct {
	InventoryID  string  `json:"inventoryId"`
	ProductName  string  `json:"productName"`
	Unit         string  `json:"unit"`
	Quantity     int     `json:"quantity"`
	Available    int     `json:"available"`
	SellingPrice float64 `json:"sellingPrice"`
}

// ListCollectedItems aggregates collected layers across a vehicle's
// issuances. Quantity is the gross collected amount; Available nets out what
// has already been sold.
func (s *IssuanceService) ListCollectedItems(ctx context.Context, vehicleID string) ([]CollectedItem, error) {
	issuances, err := s.issuanceRepo.FindByVehicleIDOldestFirst(ctx, vehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load issuances").Wrap(err)
	}

	type key struct {
		inventoryID string
		unit        string
	}
	merged := make(map[key]*CollectedItem)
	order := make([]key, 0)

	for _, iss := range issuances {
		for i := range iss.Items {
			item := &iss.Items[i]
			for j := range item.Layers {
				layer := &item.Layers[j]
				if !layer.Collected {
					continue
				}
				k := key{inventoryID: item.InventoryID, unit: normalizeUnit(layer.Unit)}
				entry, ok := merged[k]
				if !ok {
					entry = &CollectedItem{
						InventoryID:  item.InventoryID,
						ProductName:  item.ProductName,
						Unit:         layer.Unit,
						SellingPrice: layer.SellingPrice,
					}
					merged[k] = entry
					order = append(order, k)
				}
				entry.Quantity += layer.Quantity
				entry.Available += layer.Quantity - layer.SoldQty
			}
		}
	}

	result := make([]CollectedItem, 0, len(order))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result, nil
}

// publishEvents publishes domain events, logging failures without failing
// the operation that produced them
func (s *IssuanceService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events", "count", len(events))
	}
}

// normalizeUnit folds a unit name for case-insensitive merging
func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
