package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// SalesService implements the application layer for sale recording and
// reporting. Sales deplete collected issuance stock oldest-issued-first.
type SalesService struct {
	saleRepo      domain.SaleRepository
	issuanceRepo  domain.IssuanceRepository
	inventoryRepo domain.InventoryRepository
	vehicleRepo   domain.VehicleRepository
	publisher     domain.EventPublisher
	tx            TxRunner
	logger        *logging.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(
	saleRepo domain.SaleRepository,
	issuanceRepo domain.IssuanceRepository,
	inventoryRepo domain.InventoryRepository,
	vehicleRepo domain.VehicleRepository,
	publisher domain.EventPublisher,
	tx TxRunner,
	logger *logging.Logger,
) *SalesService {
	return &SalesService{
		saleRepo:      saleRepo,
		issuanceRepo:  issuanceRepo,
		inventoryRepo: inventoryRepo,
		vehicleRepo:   vehicleRepo,
		publisher:     publisher,
		tx:            tx,
		logger:        logger,
	}
}

// SaleLineRequest is one requested line of a sale
type SaleLineRequest struct {
	InventoryID string
	Unit        string
	Quantity    int
	Price       float64
}

// RecordSaleCommand represents the command to record a sale
type RecordSaleCommand struct {
	VehicleID     string
	Items         []SaleLineRequest
	PaymentMethod string
	TotalAmount   float64
	CustomerName  string
	Notes         string
}

// RecordSale depletes collected stock FIFO by issuedAt across the vehicle's
// issuances. All depletion is buffered in memory first; nothing is written
// unless every requested line is fully satisfiable, and the touched
// issuances and the sale document commit in one transaction.
func (s *SalesService) RecordSale(ctx context.Context, cmd RecordSaleCommand) (*domain.Sale, error) {
	if len(cmd.Items) == 0 {
		return nil, errors.ErrValidation("sale requires at least one item")
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, cmd.VehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load vehicle").Wrap(err)
	}
	if vehicle == nil {
		return nil, errors.ErrNotFoundWithID("vehicle", cmd.VehicleID)
	}

	issuances, err := s.issuanceRepo.FindByVehicleIDOldestFirst(ctx, cmd.VehicleID)
	if err != nil {
		return nil, errors.ErrInternal("failed to load issuances").Wrap(err)
	}

	lines := make([]domain.SaleLine, 0, len(cmd.Items))
	touched := make(map[string]*domain.Issuance)

	for _, req := range cmd.Items {
		if req.Quantity <= 0 {
			return nil, errors.ErrValidation("sale quantity must be greater than zero")
		}

		item, err := s.inventoryRepo.FindByID(ctx, req.InventoryID)
		if err != nil {
			return nil, errors.ErrInternal("failed to load inventory item").Wrap(err)
		}
		if item == nil {
			return nil, errors.ErrNotFoundWithID("inventory item", req.InventoryID)
		}

		available := 0
		for _, iss := range issuances {
			available += iss.AvailableForUnit(req.InventoryID, req.Unit)
		}
		if available < req.Quantity {
			return nil, errors.ErrInsufficientStock(
				fmt.Sprintf("%s (%s)", item.ProductName, req.Unit),
				available, req.Quantity,
			)
		}

		remaining := req.Quantity
		for _, iss := range issuances {
			if remaining <= 0 {
				break
			}
			consumed := iss.Deplete(req.InventoryID, req.Unit, remaining)
			if consumed > 0 {
				remaining -= consumed
				touched[iss.IssuanceID] = iss
			}
		}

		lines = append(lines, domain.SaleLine{
			InventoryID: req.InventoryID,
			ProductName: item.ProductName,
			Unit:        req.Unit,
			Quantity:    req.Quantity,
			Price:       req.Price,
			Total:       float64(req.Quantity) * req.Price,
		})
	}

	saleID := fmt.Sprintf("SALE-%s", uuid.New().String()[:8])
	sale, err := domain.NewSale(saleID, cmd.VehicleID, lines, domain.PaymentMethod(cmd.PaymentMethod), cmd.TotalAmount, cmd.CustomerName, cmd.Notes)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	err = s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		for _, iss := range touched {
			if err := s.issuanceRepo.Update(txCtx, iss); err != nil {
				return err
			}
		}
		return s.saleRepo.Save(txCtx, sale)
	})
	if err != nil {
		if err == domain.ErrVersionConflict {
			return nil, errors.ErrConflict("stock was modified concurrently, retry")
		}
		s.logger.WithError(err).Error("Failed to record sale", "vehicleId", cmd.VehicleID)
		return nil, errors.ErrInternal("failed to record sale").Wrap(err)
	}

	s.publishEvents(ctx, sale.GetDomainEvents())
	sale.ClearDomainEvents()

	s.logger.Info("Recorded sale",
		"saleId", sale.SaleID,
		"vehicleId", cmd.VehicleID,
		"lines", len(sale.Items),
		"totalAmount", sale.TotalAmount,
		"paymentMethod", sale.PaymentMethod,
	)

	return sale, nil
}

// ListSales retrieves sales matching the filter, newest first
func (s *SalesService) ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	sales, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.ErrInternal("failed to list sales").Wrap(err)
	}
	return sales, nil
}

// GetSalesStats aggregates sales matching the filter into revenue and
// per-method totals
func (s *SalesService) GetSalesStats(ctx context.Context, filter domain.SaleFilter) (*domain.SalesStats, error) {
	sales, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.ErrInternal("failed to load sales").Wrap(err)
	}
	stats := domain.ComputeSalesStats(sales)
	return &stats, nil
}

// publishEvents publishes domain events, logging failures without failing
// the operation that produced them
func (s *SalesService) publishEvents(ctx context.Context, events []domain.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAll(ctx, events); err != nil {
		s.logger.WithError(err).Warn("Failed to publish domain events", "count", len(events))
	}
}
