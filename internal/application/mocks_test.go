package application

import (
	"context"
	"strings"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

// MockInventoryRepository is an in-memory InventoryRepository for testing
type MockInventoryRepository struct {
	items      map[string]*domain.InventoryItem
	decrements []decrementCall
	saveErr    error
	findErr    error
}

type decrementCall struct {
	ID         string
	LayerIndex int
	Quantity   int
}

func NewMockInventoryRepository() *MockInventoryRepository {
	return &MockInventoryRepository{items: make(map[string]*domain.InventoryItem)}
}

func (m *MockInventoryRepository) AddItem(id string, item *domain.InventoryItem) {
	m.items[id] = item
}

func (m *MockInventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items[item.ID.Hex()] = item
	return nil
}

func (m *MockInventoryRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.items[id], nil
}

func (m *MockInventoryRepository) FindByName(ctx context.Context, productName string) (*domain.InventoryItem, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, item := range m.items {
		if !item.IsDeleted && strings.EqualFold(item.ProductName, productName) {
			return item, nil
		}
	}
	return nil, nil
}

func (m *MockInventoryRepository) List(ctx context.Context, filter domain.InventoryFilter, pagination domain.Pagination) ([]*domain.InventoryItem, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.InventoryItem
	for _, item := range m.items {
		if item.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (m *MockInventoryRepository) DecrementLayerStock(ctx context.Context, id string, layerIndex, quantity int) error {
	item, ok := m.items[id]
	if !ok {
		return domain.ErrInventoryNotFound
	}
	if item.PackagingStructure[layerIndex].Stock < quantity {
		return domain.ErrInsufficientStock
	}
	m.decrements = append(m.decrements, decrementCall{ID: id, LayerIndex: layerIndex, Quantity: quantity})
	return nil
}

func (m *MockInventoryRepository) Count(ctx context.Context, filter domain.InventoryFilter) (int64, error) {
	items, err := m.List(ctx, filter, domain.DefaultPagination())
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

// MockVehicleRepository is an in-memory VehicleRepository for testing
type MockVehicleRepository struct {
	vehicles map[string]*domain.Vehicle
	findErr  error
}

func NewMockVehicleRepository() *MockVehicleRepository {
	return &MockVehicleRepository{vehicles: make(map[string]*domain.Vehicle)}
}

func (m *MockVehicleRepository) AddVehicle(id string, vehicle *domain.Vehicle) {
	m.vehicles[id] = vehicle
}

func (m *MockVehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	m.vehicles[vehicle.ID.Hex()] = vehicle
	return nil
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.vehicles[id], nil
}

func (m *MockVehicleRepository) FindByRegistration(ctx context.Context, registrationNumber string) (*domain.Vehicle, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, vehicle := range m.vehicles {
		if strings.EqualFold(vehicle.RegistrationNumber, registrationNumber) {
			return vehicle, nil
		}
	}
	return nil, nil
}

func (m *MockVehicleRepository) List(ctx context.Context, pagination domain.Pagination) ([]*domain.Vehicle, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.Vehicle
	for _, vehicle := range m.vehicles {
		result = append(result, vehicle)
	}
	return result, nil
}

// MockIssuanceRepository is an in-memory IssuanceRepository for testing.
// Issuances are kept in insertion order, which tests arrange ascending by
// issuedAt so that oldest-first lookups behave like the real repository.
type MockIssuanceRepository struct {
	issuances []*domain.Issuance
	updates   int
	saveErr   error
	updateErr error
	findErr   error
}

func NewMockIssuanceRepository() *MockIssuanceRepository {
	return &MockIssuanceRepository{}
}

func (m *MockIssuanceRepository) AddIssuance(issuance *domain.Issuance) {
	m.issuances = append(m.issuances, issuance)
}

func (m *MockIssuanceRepository) Save(ctx context.Context, issuance *domain.Issuance) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.issuances = append(m.issuances, issuance)
	return nil
}

func (m *MockIssuanceRepository) Update(ctx context.Context, issuance *domain.Issuance) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	issuance.Version++
	return nil
}

func (m *MockIssuanceRepository) FindByIssuanceID(ctx context.Context, issuanceID string) (*domain.Issuance, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, iss := range m.issuances {
		if iss.IssuanceID == issuanceID {
			return iss, nil
		}
	}
	return nil, nil
}

func (m *MockIssuanceRepository) FindByVehicleID(ctx context.Context, vehicleID string, pagination domain.Pagination) ([]*domain.Issuance, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	matched, _ := m.FindByVehicleIDOldestFirst(ctx, vehicleID)
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched, nil
}

func (m *MockIssuanceRepository) FindByVehicleIDOldestFirst(ctx context.Context, vehicleID string) ([]*domain.Issuance, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.Issuance
	for _, iss := range m.issuances {
		if iss.VehicleID == vehicleID {
			result = append(result, iss)
		}
	}
	return result, nil
}

// MockSaleRepository is an in-memory SaleRepository for testing
type MockSaleRepository struct {
	sales   []*domain.Sale
	saveErr error
	findErr error
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{}
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sales = append(m.sales, sale)
	return nil
}

func (m *MockSaleRepository) FindBySaleID(ctx context.Context, saleID string) (*domain.Sale, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, sale := range m.sales {
		if sale.SaleID == saleID {
			return sale, nil
		}
	}
	return nil, nil
}

func (m *MockSaleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var result []*domain.Sale
	for _, sale := range m.sales {
		if filter.VehicleID != nil && sale.VehicleID != *filter.VehicleID {
			continue
		}
		if filter.Date != nil && sale.Date != *filter.Date {
			continue
		}
		result = append(result, sale)
	}
	return result, nil
}

// passthroughTx runs transaction bodies directly against the test context
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() *logging.Logger {
	return logging.New(logging.DefaultConfig("test"))
}
