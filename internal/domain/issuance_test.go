package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestIssuedItems() []IssuedItem {
	return []IssuedItem{
		{
			InventoryID: "INV-001",
			ProductName: "Omena",
			BuyingPrice: 2000,
			Layers: []IssuedLayer{
				{LayerIndex: 0, Unit: "case", Quantity: 2, SellingPrice: 3000},
				{LayerIndex: 1, Unit: "crate", Quantity: 5, SellingPrice: 550},
			},
		},
		{
			InventoryID: "INV-002",
			ProductName: "Tilapia",
			BuyingPrice: 800,
			Layers: []IssuedLayer{
				{LayerIndex: 0, Unit: "tray", Quantity: 4, SellingPrice: 1200},
			},
		},
	}
}

// TestNewIssuance tests issuance creation
func TestNewIssuance(t *testing.T) {
	t.Run("creates issuance with zeroed collection counters", func(t *testing.T) {
		issuance, err := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "morning run")

		require.NoError(t, err)
		require.NotNil(t, issuance)
		assert.Equal(t, "ISS-001", issuance.IssuanceID)
		assert.Equal(t, "VEH-001", issuance.VehicleID)
		assert.Equal(t, IssuanceStatusIssued, issuance.Status)
		assert.Nil(t, issuance.CollectedAt)
		assert.Equal(t, int64(1), issuance.Version)
		assert.NotZero(t, issuance.IssuedAt)

		for _, item := range issuance.Items {
			for _, layer := range item.Layers {
				assert.False(t, layer.Collected)
				assert.Zero(t, layer.CollectedQty)
				assert.Zero(t, layer.SoldQty)
				assert.Nil(t, layer.CollectedAt)
			}
		}

		events := issuance.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*IssuanceCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "ISS-001", created.IssuanceID)
		assert.Equal(t, 3, created.TotalLayers)
	})

	t.Run("rejects empty item list", func(t *testing.T) {
		_, err := NewIssuance("ISS-002", "VEH-001", nil, "")
		assert.ErrorIs(t, err, ErrEmptyIssuance)
	})

	t.Run("rejects item without layers", func(t *testing.T) {
		items := []IssuedItem{{InventoryID: "INV-001", ProductName: "Omena"}}
		_, err := NewIssuance("ISS-003", "VEH-001", items, "")
		assert.ErrorIs(t, err, ErrEmptyIssuance)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		items := createTestIssuedItems()
		items[0].Layers[0].Quantity = 0
		_, err := NewIssuance("ISS-004", "VEH-001", items, "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

// TestCollectLayer tests the collection state machine
func TestCollectLayer(t *testing.T) {
	t.Run("first collection moves issuance to partial", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		issuance.ClearDomainEvents()

		err := issuance.CollectLayer(0, 0)

		require.NoError(t, err)
		layer := issuance.Items[0].Layers[0]
		assert.True(t, layer.Collected)
		assert.Equal(t, layer.Quantity, layer.CollectedQty)
		assert.NotNil(t, layer.CollectedAt)
		assert.Equal(t, IssuanceStatusPartial, issuance.Status)
		assert.Nil(t, issuance.CollectedAt)

		events := issuance.GetDomainEvents()
		require.Len(t, events, 1)
		collected, ok := events[0].(*LayerCollectedEvent)
		require.True(t, ok)
		assert.Equal(t, "case", collected.Unit)
		assert.Equal(t, string(IssuanceStatusPartial), collected.Status)
	})

	t.Run("collecting every layer moves issuance to collected", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		issuance.ClearDomainEvents()

		require.NoError(t, issuance.CollectLayer(0, 0))
		require.NoError(t, issuance.CollectLayer(0, 1))
		assert.Equal(t, IssuanceStatusPartial, issuance.Status)
		assert.Nil(t, issuance.CollectedAt)

		require.NoError(t, issuance.CollectLayer(1, 0))
		assert.Equal(t, IssuanceStatusCollected, issuance.Status)
		require.NotNil(t, issuance.CollectedAt)

		var sawIssuanceCollected bool
		for _, event := range issuance.GetDomainEvents() {
			if _, ok := event.(*IssuanceCollectedEvent); ok {
				sawIssuanceCollected = true
			}
		}
		assert.True(t, sawIssuanceCollected)
	})

	t.Run("double collection is rejected", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")

		require.NoError(t, issuance.CollectLayer(0, 0))
		err := issuance.CollectLayer(0, 0)

		assert.ErrorIs(t, err, ErrLayerAlreadyCollected)
		assert.Equal(t, issuance.Items[0].Layers[0].Quantity, issuance.Items[0].Layers[0].CollectedQty)
	})

	t.Run("out of range indexes are rejected", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")

		assert.ErrorIs(t, issuance.CollectLayer(5, 0), ErrItemIndexOutOfRange)
		assert.ErrorIs(t, issuance.CollectLayer(-1, 0), ErrItemIndexOutOfRange)
		assert.ErrorIs(t, issuance.CollectLayer(0, 9), ErrLayerIndexOutOfRange)
	})
}

// TestAvailableForUnit tests availability accounting
func TestAvailableForUnit(t *testing.T) {
	issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")

	// Uncollected layers contribute nothing
	assert.Zero(t, issuance.AvailableForUnit("INV-001", "case"))

	require.NoError(t, issuance.CollectLayer(0, 0))
	assert.Equal(t, 2, issuance.AvailableForUnit("INV-001", "case"))
	assert.Equal(t, 2, issuance.AvailableForUnit("INV-001", "CASE"))
	assert.Zero(t, issuance.AvailableForUnit("INV-001", "crate"))
	assert.Zero(t, issuance.AvailableForUnit("INV-002", "case"))

	issuance.Items[0].Layers[0].SoldQty = 1
	assert.Equal(t, 1, issuance.AvailableForUnit("INV-001", "case"))
}

// TestConsumeForBreak tests removal of source units for a break transfer
func TestConsumeForBreak(t *testing.T) {
	t.Run("consumes up to available and keeps counters consistent", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		require.NoError(t, issuance.CollectLayer(0, 0))

		consumed := issuance.ConsumeForBreak("INV-001", "case", 1)

		assert.Equal(t, 1, consumed)
		layer := issuance.Items[0].Layers[0]
		assert.Equal(t, 1, layer.Quantity)
		assert.LessOrEqual(t, layer.SoldQty, layer.CollectedQty)
		assert.LessOrEqual(t, layer.CollectedQty, layer.Quantity)
	})

	t.Run("never consumes sold units", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		require.NoError(t, issuance.CollectLayer(0, 0))
		issuance.Items[0].Layers[0].SoldQty = 1

		consumed := issuance.ConsumeForBreak("INV-001", "case", 2)

		assert.Equal(t, 1, consumed)
		assert.Equal(t, 1, issuance.Items[0].Layers[0].Quantity)
	})

	t.Run("ignores uncollected layers", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")

		consumed := issuance.ConsumeForBreak("INV-001", "case", 1)
		assert.Zero(t, consumed)
	})
}

// TestAddBrokenUnits tests crediting units created by a break
func TestAddBrokenUnits(t *testing.T) {
	t.Run("appends a new collected layer when target unit is absent", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		require.NoError(t, issuance.CollectLayer(1, 0))

		err := issuance.AddBrokenUnits("INV-002", 1, "piece", 30, 50)

		require.NoError(t, err)
		require.Len(t, issuance.Items[1].Layers, 2)
		layer := issuance.Items[1].Layers[1]
		assert.Equal(t, "piece", layer.Unit)
		assert.Equal(t, 30, layer.Quantity)
		assert.Equal(t, 30, layer.CollectedQty)
		assert.True(t, layer.Collected)
		assert.NotNil(t, layer.CollectedAt)
	})

	t.Run("absorbs into an existing target layer", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		require.NoError(t, issuance.CollectLayer(0, 1))

		err := issuance.AddBrokenUnits("INV-001", 1, "crate", 6, 550)

		require.NoError(t, err)
		layer := issuance.Items[0].Layers[1]
		assert.Equal(t, 11, layer.Quantity)
		assert.Equal(t, 11, layer.CollectedQty)
	})

	t.Run("never absorbs into an uncollected layer", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		require.NoError(t, issuance.CollectLayer(0, 0))

		// The crate layer (5 issued) is still uncollected; crediting broken
		// crates must not make that pending quantity sellable.
		err := issuance.AddBrokenUnits("INV-001", 1, "crate", 6, 550)

		require.NoError(t, err)
		require.Len(t, issuance.Items[0].Layers, 3)

		pending := issuance.Items[0].Layers[1]
		assert.False(t, pending.Collected)
		assert.Equal(t, 5, pending.Quantity)
		assert.Zero(t, pending.CollectedQty)

		credited := issuance.Items[0].Layers[2]
		assert.True(t, credited.Collected)
		assert.Equal(t, 6, credited.Quantity)
		assert.Equal(t, 6, credited.CollectedQty)

		assert.Equal(t, 6, issuance.AvailableForUnit("INV-001", "crate"))
		assert.Equal(t, 6, issuance.Deplete("INV-001", "crate", 20))
		for _, layer := range issuance.Items[0].Layers {
			assert.LessOrEqual(t, layer.SoldQty, layer.CollectedQty)
			assert.LessOrEqual(t, layer.CollectedQty, layer.Quantity)
		}
	})

	t.Run("unknown item is rejected", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		err := issuance.AddBrokenUnits("INV-999", 1, "piece", 6, 50)
		assert.ErrorIs(t, err, ErrInventoryNotFound)
	})

	t.Run("non-positive units are rejected", func(t *testing.T) {
		issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
		err := issuance.AddBrokenUnits("INV-001", 1, "crate", 0, 550)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

// TestDeplete tests sale depletion against collected layers
func TestDeplete(t *testing.T) {
	issuance, _ := NewIssuance("ISS-001", "VEH-001", createTestIssuedItems(), "")
	require.NoError(t, issuance.CollectLayer(0, 1))

	consumed := issuance.Deplete("INV-001", "crate", 3)
	assert.Equal(t, 3, consumed)
	assert.Equal(t, 3, issuance.Items[0].Layers[1].SoldQty)

	// Only 2 remain; asking for more drains what is left
	consumed = issuance.Deplete("INV-001", "crate", 4)
	assert.Equal(t, 2, consumed)
	assert.Equal(t, 5, issuance.Items[0].Layers[1].SoldQty)
	assert.Zero(t, issuance.AvailableForUnit("INV-001", "crate"))
}

// TestIssueCollectBreakSellFlow runs the whole lifecycle across one issuance
func TestIssueCollectBreakSellFlow(t *testing.T) {
	packaging := PackagingStructure{
		{Unit: "case", Stock: 10, SellingPrice: 3000},
		{Unit: "crate", Qty: 6, SellingPrice: 550},
	}

	items := []IssuedItem{
		{
			InventoryID: "INV-001",
			ProductName: "Omena",
			Layers: []IssuedLayer{
				{LayerIndex: 0, Unit: "case", Quantity: 2, SellingPrice: packaging[0].SellingPrice},
			},
		},
	}

	issuance, err := NewIssuance("ISS-001", "VEH-001", items, "")
	require.NoError(t, err)

	require.NoError(t, issuance.CollectLayer(0, 0))
	assert.Equal(t, IssuanceStatusCollected, issuance.Status)

	// Break one case into crates
	ratio, err := packaging.ConversionRatio(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, ratio)

	consumed := issuance.ConsumeForBreak("INV-001", "case", 1)
	require.Equal(t, 1, consumed)
	require.NoError(t, issuance.AddBrokenUnits("INV-001", 1, "crate", consumed*ratio, packaging[1].SellingPrice))

	assert.Equal(t, 1, issuance.AvailableForUnit("INV-001", "case"))
	assert.Equal(t, 6, issuance.AvailableForUnit("INV-001", "crate"))

	// Sell 4 crates; the case layer is untouched
	sold := issuance.Deplete("INV-001", "crate", 4)
	assert.Equal(t, 4, sold)

	crateLayer := issuance.Items[0].Layers[1]
	assert.Equal(t, 4, crateLayer.SoldQty)
	assert.Zero(t, issuance.Items[0].Layers[0].SoldQty)
	assert.Equal(t, 2, issuance.AvailableForUnit("INV-001", "crate"))

	// Conservation in smallest units: 1 case + 2 crates unsold = 8 crates worth,
	// plus 4 crates sold = the 12 crates originally issued
	unsold := issuance.AvailableForUnit("INV-001", "case")*ratio + issuance.AvailableForUnit("INV-001", "crate")
	assert.Equal(t, 12, unsold+sold)
}
