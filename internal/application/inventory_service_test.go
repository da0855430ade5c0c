package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/errors"
)

// recordingSnapshots counts snapshot pushes so tests can assert the stream
// is refreshed after each mutation
type recordingSnapshots struct {
	published int
	lastCount int
}

func (r *recordingSnapshots) PublishInventorySnapshot(ctx context.Context, items []*domain.InventoryItem) {
	r.published++
	r.lastCount = len(items)
}

func newInventoryTestService(t *testing.T) (*InventoryService, *MockInventoryRepository, *recordingSnapshots) {
	t.Helper()
	repo := NewMockInventoryRepository()
	snapshots := &recordingSnapshots{}
	service := NewInventoryService(repo, nil, snapshots, passthroughTx{}, testLogger())
	return service, repo, snapshots
}

func testPackagingRequest() []PackagingLayerRequest {
	return []PackagingLayerRequest{
		{Unit: "case", Stock: 10, SellingPrice: 3000},
		{Unit: "crate", Qty: 6, SellingPrice: 550},
		{Unit: "piece", Qty: 12, SellingPrice: 50},
	}
}

func TestInventoryService_CreateInventoryItem(t *testing.T) {
	t.Run("creates item and pushes a snapshot", func(t *testing.T) {
		service, repo, snapshots := newInventoryTestService(t)

		item, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName:        "Omena",
			Category:           "fish",
			BuyingPricePerUnit: 2000,
			Packaging:          testPackagingRequest(),
		})

		require.NoError(t, err)
		assert.Equal(t, "Omena", item.ProductName)
		assert.Len(t, item.PackagingStructure, 3)
		assert.Len(t, repo.items, 1)
		assert.Equal(t, 1, snapshots.published)
		assert.Equal(t, 1, snapshots.lastCount)
	})

	t.Run("duplicate name conflicts case-insensitively", func(t *testing.T) {
		service, _, _ := newInventoryTestService(t)

		_, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "Omena",
			Packaging:   testPackagingRequest(),
		})
		require.NoError(t, err)

		_, err = service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "OMENA",
			Packaging:   testPackagingRequest(),
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeConflict, appErr.Code)
	})

	t.Run("invalid packaging is a validation error", func(t *testing.T) {
		service, _, _ := newInventoryTestService(t)

		_, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "Omena",
			Packaging:   []PackagingLayerRequest{{Unit: "case"}, {Unit: "piece", Qty: 0}},
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeValidationError, appErr.Code)
	})
}

func TestInventoryService_DeleteAndRestore(t *testing.T) {
	service, repo, snapshots := newInventoryTestService(t)

	item, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
		ProductName: "Omena",
		Packaging:   testPackagingRequest(),
	})
	require.NoError(t, err)
	id := item.ID.Hex()

	require.NoError(t, service.DeleteInventoryItem(context.Background(), id))
	assert.True(t, repo.items[id].IsDeleted)

	// Deleted items are hidden from reads
	_, err = service.GetInventoryItem(context.Background(), id)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)

	restored, err := service.RestoreInventoryItem(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.True(t, restored.IsActive)

	// create + delete + restore
	assert.Equal(t, 3, snapshots.published)
}

func TestInventoryService_BreakCentralStock(t *testing.T) {
	t.Run("moves stock between layers", func(t *testing.T) {
		service, repo, snapshots := newInventoryTestService(t)
		item, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "Omena",
			Packaging:   testPackagingRequest(),
		})
		require.NoError(t, err)

		result, err := service.BreakCentralStock(context.Background(), BreakCentralStockCommand{
			InventoryID: item.ID.Hex(),
			SourceUnit:  "case",
			TargetUnit:  "crate",
			Quantity:    2,
		})

		require.NoError(t, err)
		assert.Equal(t, 12, result.UnitsCreated)
		assert.Equal(t, 6, result.ConversionRatio)

		saved := repo.items[item.ID.Hex()]
		assert.Equal(t, 8, saved.PackagingStructure[0].Stock)
		assert.Equal(t, 12, saved.PackagingStructure[1].Stock)
		assert.Equal(t, 2, snapshots.published)
	})

	t.Run("insufficient central stock conflicts", func(t *testing.T) {
		service, _, _ := newInventoryTestService(t)
		item, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "Omena",
			Packaging:   testPackagingRequest(),
		})
		require.NoError(t, err)

		_, err = service.BreakCentralStock(context.Background(), BreakCentralStockCommand{
			InventoryID: item.ID.Hex(),
			SourceUnit:  "case",
			TargetUnit:  "crate",
			Quantity:    11,
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInsufficientStock, appErr.Code)
	})

	t.Run("upward conversion is rejected", func(t *testing.T) {
		service, _, _ := newInventoryTestService(t)
		item, err := service.CreateInventoryItem(context.Background(), CreateInventoryItemCommand{
			ProductName: "Omena",
			Packaging:   testPackagingRequest(),
		})
		require.NoError(t, err)

		_, err = service.BreakCentralStock(context.Background(), BreakCentralStockCommand{
			InventoryID: item.ID.Hex(),
			SourceUnit:  "piece",
			TargetUnit:  "case",
			Quantity:    1,
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInvalidConversion, appErr.Code)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		service, _, _ := newInventoryTestService(t)

		_, err := service.BreakCentralStock(context.Background(), BreakCentralStockCommand{
			InventoryID: "missing",
			SourceUnit:  "case",
			TargetUnit:  "crate",
			Quantity:    1,
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeNotFound, appErr.Code)
	})
}

func TestVehicleService_RegisterVehicle(t *testing.T) {
	t.Run("registers vehicle", func(t *testing.T) {
		repo := NewMockVehicleRepository()
		service := NewVehicleService(repo, nil, testLogger())

		vehicle, err := service.RegisterVehicle(context.Background(), RegisterVehicleCommand{
			VehicleName:        "Lakeside Runner",
			RegistrationNumber: "kbz 123a",
			SalesTeamMember:    "Achieng",
		})

		require.NoError(t, err)
		assert.Equal(t, "KBZ 123A", vehicle.RegistrationNumber)
		assert.True(t, vehicle.IsActive)
		assert.Len(t, repo.vehicles, 1)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		repo := NewMockVehicleRepository()
		service := NewVehicleService(repo, nil, testLogger())

		_, err := service.RegisterVehicle(context.Background(), RegisterVehicleCommand{
			VehicleName:        "Lakeside Runner",
			RegistrationNumber: "KBZ 123A",
		})
		require.NoError(t, err)

		_, err = service.RegisterVehicle(context.Background(), RegisterVehicleCommand{
			VehicleName:        "Lakeside Express",
			RegistrationNumber: "kbz 123a",
		})

		require.Error(t, err)
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeConflict, appErr.Code)
	})
}
