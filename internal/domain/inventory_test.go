package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestItem(t *testing.T) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem("Omena", "Lake Suppliers", "fish", 2000, 2, createTestPackaging())
	require.NoError(t, err)
	item.ClearDomainEvents()
	return item
}

// TestNewInventoryItem tests catalog item creation
func TestNewInventoryItem(t *testing.T) {
	t.Run("creates active item with lowered name", func(t *testing.T) {
		item, err := NewInventoryItem("Fresh Omena", "", "", 2000, 5, createTestPackaging())

		require.NoError(t, err)
		assert.Equal(t, "Fresh Omena", item.ProductName)
		assert.Equal(t, "fresh omena", item.ProductNameLower)
		assert.True(t, item.IsActive)
		assert.False(t, item.IsDeleted)
		assert.NotZero(t, item.DateAdded)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*InventoryCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := NewInventoryItem("   ", "", "", 0, 0, createTestPackaging())
		assert.Error(t, err)
	})

	t.Run("rejects invalid packaging", func(t *testing.T) {
		_, err := NewInventoryItem("Omena", "", "", 0, 0, PackagingStructure{})
		assert.ErrorIs(t, err, ErrInvalidPackaging)
	})
}

// TestInventoryItemSoftDelete tests delete and restore transitions
func TestInventoryItemSoftDelete(t *testing.T) {
	item := createTestItem(t)

	require.NoError(t, item.SoftDelete())
	assert.True(t, item.IsDeleted)
	assert.False(t, item.IsActive)
	assert.NotNil(t, item.DeletedAt)

	assert.ErrorIs(t, item.SoftDelete(), ErrItemDeleted)
	assert.ErrorIs(t, item.Update("Omena", "", "", 0, 0, createTestPackaging()), ErrItemDeleted)

	require.NoError(t, item.Restore())
	assert.False(t, item.IsDeleted)
	assert.True(t, item.IsActive)
	assert.Nil(t, item.DeletedAt)

	assert.ErrorIs(t, item.Restore(), ErrItemNotDeleted)
}

// TestDecrementLayerStock tests stock decrements and the low stock alert
func TestDecrementLayerStock(t *testing.T) {
	t.Run("decrements within available stock", func(t *testing.T) {
		item := createTestItem(t)

		require.NoError(t, item.DecrementLayerStock(0, 3))

		stock, err := item.LayerStock(0)
		require.NoError(t, err)
		assert.Equal(t, 7, stock)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("refuses to go negative", func(t *testing.T) {
		item := createTestItem(t)

		err := item.DecrementLayerStock(0, 11)

		assert.ErrorIs(t, err, ErrInsufficientStock)
		stock, _ := item.LayerStock(0)
		assert.Equal(t, 10, stock)
	})

	t.Run("emits low stock event at the threshold", func(t *testing.T) {
		item := createTestItem(t)

		require.NoError(t, item.DecrementLayerStock(0, 8))

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		lowStock, ok := events[0].(*LowStockEvent)
		require.True(t, ok)
		assert.Equal(t, "case", lowStock.Unit)
		assert.Equal(t, 2, lowStock.Remaining)
		assert.Equal(t, 2, lowStock.Threshold)
	})

	t.Run("rejects bad arguments", func(t *testing.T) {
		item := createTestItem(t)

		assert.ErrorIs(t, item.DecrementLayerStock(9, 1), ErrLayerIndexOutOfRange)
		assert.ErrorIs(t, item.DecrementLayerStock(0, 0), ErrInvalidQuantity)
	})
}

// TestBreakCentralStock tests conversion of central stock between layers
func TestBreakCentralStock(t *testing.T) {
	t.Run("moves stock down the hierarchy", func(t *testing.T) {
		item := createTestItem(t)

		unitsCreated, ratio, err := item.BreakCentralStock("case", "crate", 2)

		require.NoError(t, err)
		assert.Equal(t, 12, unitsCreated)
		assert.Equal(t, 6, ratio)

		caseStock, _ := item.LayerStock(0)
		crateStock, _ := item.LayerStock(1)
		assert.Equal(t, 8, caseStock)
		assert.Equal(t, 12, crateStock)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		broken, ok := events[0].(*UnitBrokenEvent)
		require.True(t, ok)
		assert.Equal(t, "case", broken.FromUnit)
		assert.Equal(t, "crate", broken.ToUnit)
		assert.Equal(t, 12, broken.UnitsCreated)
	})

	t.Run("resolves units case-insensitively", func(t *testing.T) {
		item := createTestItem(t)

		unitsCreated, _, err := item.BreakCentralStock("CASE", "Piece", 1)
		require.NoError(t, err)
		assert.Equal(t, 72, unitsCreated)
	})

	t.Run("unknown unit fails", func(t *testing.T) {
		item := createTestItem(t)
		_, _, err := item.BreakCentralStock("pallet", "crate", 1)
		assert.ErrorIs(t, err, ErrLayerNotFound)
	})

	t.Run("upward conversion fails", func(t *testing.T) {
		item := createTestItem(t)
		_, _, err := item.BreakCentralStock("crate", "case", 1)
		assert.ErrorIs(t, err, ErrInvalidConversion)
	})

	t.Run("insufficient source stock fails", func(t *testing.T) {
		item := createTestItem(t)
		_, _, err := item.BreakCentralStock("case", "crate", 11)
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})
}

// TestNewVehicle tests vehicle registration
func TestNewVehicle(t *testing.T) {
	t.Run("creates active vehicle with uppercased registration", func(t *testing.T) {
		vehicle, err := NewVehicle("Lakeside Runner", "kbz 123a", "Achieng")

		require.NoError(t, err)
		assert.Equal(t, "KBZ 123A", vehicle.RegistrationNumber)
		assert.True(t, vehicle.IsActive)

		events := vehicle.GetDomainEvents()
		require.Len(t, events, 1)
		_, ok := events[0].(*VehicleRegisteredEvent)
		assert.True(t, ok)
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		_, err := NewVehicle("", "KBZ 123A", "")
		assert.ErrorIs(t, err, ErrInvalidVehicle)

		_, err = NewVehicle("Lakeside Runner", "  ", "")
		assert.ErrorIs(t, err, ErrInvalidVehicle)
	})
}

// TestVehicleUpdate tests editable field replacement
func TestVehicleUpdate(t *testing.T) {
	vehicle, err := NewVehicle("Lakeside Runner", "KBZ 123A", "Achieng")
	require.NoError(t, err)
	vehicle.ClearDomainEvents()

	require.NoError(t, vehicle.Update("Lakeside Express", "Otieno", false))

	assert.Equal(t, "Lakeside Express", vehicle.VehicleName)
	assert.Equal(t, "Otieno", vehicle.SalesTeamMember)
	assert.False(t, vehicle.IsActive)
	assert.Equal(t, "KBZ 123A", vehicle.RegistrationNumber)

	events := vehicle.GetDomainEvents()
	require.Len(t, events, 1)
	_, ok := events[0].(*VehicleUpdatedEvent)
	assert.True(t, ok)
}
