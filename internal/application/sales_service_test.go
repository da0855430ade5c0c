package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
)

func newSalesTestService(t *testing.T) (*SalesService, *MockSaleRepository, *MockIssuanceRepository, *MockInventoryRepository, *MockVehicleRepository) {
	t.Helper()
	saleRepo := NewMockSaleRepository()
	issuanceRepo := NewMockIssuanceRepository()
	inventoryRepo := NewMockInventoryRepository()
	vehicleRepo := NewMockVehicleRepository()
	service := NewSalesService(saleRepo, issuanceRepo, inventoryRepo, vehicleRepo, nil, passthroughTx{}, testLogger())
	return service, saleRepo, issuanceRepo, inventoryRepo, vehicleRepo
}

func addCollectedCrates(t *testing.T, repo *MockIssuanceRepository, id, vehicleID, inventoryID string, crates int) *domain.Issuance {
	t.Helper()
	issuance, err := domain.NewIssuance(id, vehicleID, []domain.IssuedItem{
		{
			InventoryID: inventoryID,
			ProductName: "Omena",
			Layers: []domain.IssuedLayer{
				{LayerIndex: 1, Unit: "crate", Quantity: crates, SellingPrice: 550},
			},
		},
	}, "")
	require.NoError(t, err)
	collectAll(t, issuance)
	repo.AddIssuance(issuance)
	return issuance
}

func TestSalesService_RecordSale(t *testing.T) {
	t.Run("depletes oldest issuances first", func(t *testing.T) {
		service, saleRepo, issuanceRepo, inventoryRepo, vehicleRepo := newSalesTestService(t)
		vehicleID := addTestVehicle(t, vehicleRepo)
		inventoryID := addTestInventoryItem(t, inventoryRepo, "Omena")
		first := addCollectedCrates(t, issuanceRepo, "ISS-old", vehicleID, inventoryID, 10)
		second := addCollectedCrates(t, issuanceRepo, "ISS-new", vehicleID, inventoryID, 10)

		sale, err := service.RecordSale(context.Background(), RecordSaleCommand{
			VehicleID:     vehicleID,
			Items:         []SaleLineRequest{{InventoryID: inventoryID, Unit: "crate", Quantity: 15, Price: 550}},
			PaymentMethod: "cash",
			TotalAmount:   8250,
		})

		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.Equal(t, 10, first.Items[0].Layers[0].SoldQty)
		assert.Equal(t, 5, second.Items[0].Layers[0].SoldQty)
		assert.Equal(t, 2, issuanceRepo.updates)

		require.Len(t, saleRepo.sales, 1)
		assert.Equal(t, domain.PaymentCash, saleRepo.sales[0].PaymentMethod)
		assert.Equal(t, 8250.0, saleRepo.sales[0].TotalAmount)
		require.Len(t, sale.Items, 1)
		assert.Equal(t, "Omena", sale.Items[0].ProductName)
		assert.Equal(t, 8250.0, sale.Items[0].Total)
	})

	t.Run("insufficient availability fails before any depletion", func(t *testing.T) {
		service, saleRepo, issuanceRepo, inventoryRepo, vehicleRepo := newSalesTestService(t)
		vehicleID := addTestVehicle(t, vehicleRepo)
		inventoryID := addTestInventoryItem(t, inventoryRepo, "Omena")
		issuance := addCollectedCrates(t, issuanceRepo, "ISS-old", vehicleID, inventoryID, 4)

		_, err := service.RecordSale(context.Background(), RecordSaleCommand{
			VehicleID:     vehicleID,
			Items:         []SaleLineRequest{{InventoryID: inventoryID, Unit: "crate", Quantity: 6, Price: 550}},
			PaymentMethod: "cash",
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, "4", appErr.Details["available"])
		assert.Equal(t, "6", appErr.Details["requested"])

		assert.Zero(t, issuance.Items[0].Layers[0].SoldQty)
		assert.Zero(t, issuanceRepo.updates)
		assert.Empty(t, saleRepo.sales)
	})

	t.Run("uncollected stock does not count as available", func(t *testing.T) {
		service, _, issuanceRepo, inventoryRepo, vehicleRepo := newSalesTestService(t)
		vehicleID := addTestVehicle(t, vehicleRepo)
		inventoryID := addTestInventoryItem(t, inventoryRepo, "Omena")

		issuance, err := domain.NewIssuance("ISS-uncollected", vehicleID, []domain.IssuedItem{
			{
				InventoryID: inventoryID,
				ProductName: "Omena",
				Layers: []domain.IssuedLayer{
					{LayerIndex: 1, Unit: "crate", Quantity: 10, SellingPrice: 550},
				},
			},
		}, "")
		require.NoError(t, err)
		issuanceRepo.AddIssuance(issuance)

		_, err = service.RecordSale(context.Background(), RecordSaleCommand{
			VehicleID:     vehicleID,
			Items:         []SaleLineRequest{{InventoryID: inventoryID, Unit: "crate", Quantity: 1, Price: 550}},
			PaymentMethod: "cash",
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, "0", appErr.Details["available"])
	})

	t.Run("later lines see availability reduced by earlier lines", func(t *testing.T) {
		service, _, issuanceRepo, inventoryRepo, vehicleRepo := newSalesTestService(t)
		vehicleID := addTestVehicle(t, vehicleRepo)
		inventoryID := addTestInventoryItem(t, inventoryRepo, "Omena")
		issuance := addCollectedCrates(t, issuanceRepo, "ISS-old", vehicleID, inventoryID, 5)

		_, err := service.RecordSale(context.Background(), RecordSaleCommand{
			VehicleID: vehicleID,
			Items: []SaleLineRequest{
				{InventoryID: inventoryID, Unit: "crate", Quantity: 4, Price: 550},
				{InventoryID: inventoryID, Unit: "crate", Quantity: 2, Price: 550},
			},
			PaymentMethod: "cash",
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
		assert.Equal(t, "1", appErr.Details["available"])
		assert.Equal(t, "2", appErr.Details["requested"])

		// The first line's depletion stays buffered in memory; nothing is written
		assert.Zero(t, issuanceRepo.updates)
		assert.Equal(t, 4, issuance.Items[0].Layers[0].SoldQty)
	})

	t.Run("unknown vehicle is not found", func(t *testing.T) {
		service, _, _, inventoryRepo, _ := newSalesTestService(t)
		inventoryID := addTestInventoryItem(t, inventoryRepo, "Omena")

		_, err := service.RecordSale(context.Background(), RecordSaleCommand{
			VehicleID:     "missing",
			Items:         []SaleLineRequest{{InventoryID: inventoryID, Unit: "crate", Quantity: 1}},
			PaymentMethod: "cash",
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeNotFound, appErr.Code)
	})

	t.Run("empty sale is rejected", func(t *testing.T) {
		service, _, _, _, vehicleRepo := newSalesTestService(t)
		vehicleID := addTestVehicle(t, vehicleRepo)

		_, err := service.RecordSale(context.Background(), RecordSaleCommand{VehicleID: vehicleID, PaymentMethod: "cash"})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeValidationError, appErr.Code)
	})
}

func TestSalesService_GetSalesStats(t *testing.T) {
	service, saleRepo, _, _, _ := newSalesTestService(t)

	addSale := func(method domain.PaymentMethod, total float64, qty int) {
		sale, err := domain.NewSale("SALE-x", "VEH-001",
			[]domain.SaleLine{{InventoryID: "INV-001", Unit: "crate", Quantity: qty, Price: total / float64(qty)}},
			method, total, "", "")
		require.NoError(t, err)
		saleRepo.sales = append(saleRepo.sales, sale)
	}

	addSale(domain.PaymentCash, 1000, 2)
	addSale(domain.PaymentMpesa, 600, 1)
	addSale(domain.PaymentDebt, 400, 1)

	stats, err := service.GetSalesStats(context.Background(), domain.SaleFilter{})

	require.NoError(t, err)
	assert.Equal(t, 2000.0, stats.TotalRevenue)
	assert.Equal(t, 1000.0, stats.CashTotal)
	assert.Equal(t, 600.0, stats.MpesaTotal)
	assert.Equal(t, 400.0, stats.DebtTotal)
	assert.Equal(t, 4, stats.TotalItemsSold)
	assert.Equal(t, 3, stats.SaleCount)
}
