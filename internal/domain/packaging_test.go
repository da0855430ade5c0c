package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestPackaging() PackagingStructure {
	return PackagingStructure{
		{Unit: "case", Qty: 0, Stock: 10, SellingPrice: 3000},
		{Unit: "crate", Qty: 6, Stock: 0, SellingPrice: 550},
		{Unit: "piece", Qty: 12, Stock: 0, SellingPrice: 50},
	}
}

// TestConversionRatio tests downward conversion between packaging layers
func TestConversionRatio(t *testing.T) {
	packaging := createTestPackaging()

	tests := []struct {
		name        string
		sourceIndex int
		targetIndex int
		want        int
		expectError bool
	}{
		{
			name:        "case to crate",
			sourceIndex: 0,
			targetIndex: 1,
			want:        6,
		},
		{
			name:        "case to piece multiplies through crate",
			sourceIndex: 0,
			targetIndex: 2,
			want:        72,
		},
		{
			name:        "crate to piece",
			sourceIndex: 1,
			targetIndex: 2,
			want:        12,
		},
		{
			name:        "upward conversion is rejected",
			sourceIndex: 1,
			targetIndex: 0,
			expectError: true,
		},
		{
			name:        "same layer is rejected",
			sourceIndex: 2,
			targetIndex: 2,
			expectError: true,
		},
		{
			name:        "source out of range",
			sourceIndex: -1,
			targetIndex: 1,
			expectError: true,
		},
		{
			name:        "target out of range",
			sourceIndex: 0,
			targetIndex: 3,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio, err := packaging.ConversionRatio(tt.sourceIndex, tt.targetIndex)

			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidConversion)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ratio)
			}
		})
	}
}

// TestConversionRatioZeroQty tests that a malformed layer breaks conversion
func TestConversionRatioZeroQty(t *testing.T) {
	packaging := PackagingStructure{
		{Unit: "case", Stock: 10},
		{Unit: "piece", Qty: 0},
	}

	_, err := packaging.ConversionRatio(0, 1)
	assert.ErrorIs(t, err, ErrInvalidConversion)
}

// TestFindLayerIndex tests case-insensitive layer lookup
func TestFindLayerIndex(t *testing.T) {
	packaging := createTestPackaging()

	assert.Equal(t, 0, packaging.FindLayerIndex("case"))
	assert.Equal(t, 1, packaging.FindLayerIndex("Crate"))
	assert.Equal(t, 2, packaging.FindLayerIndex("PIECE"))
	assert.Equal(t, -1, packaging.FindLayerIndex("pallet"))
	assert.Equal(t, -1, packaging.FindLayerIndex(""))
}

// TestPackagingValidate tests structural validation
func TestPackagingValidate(t *testing.T) {
	tests := []struct {
		name        string
		packaging   PackagingStructure
		expectError bool
	}{
		{
			name:      "valid three layer structure",
			packaging: createTestPackaging(),
		},
		{
			name:      "single layer needs no qty",
			packaging: PackagingStructure{{Unit: "bag", Stock: 5, SellingPrice: 100}},
		},
		{
			name:        "empty structure",
			packaging:   PackagingStructure{},
			expectError: true,
		},
		{
			name: "blank unit name",
			packaging: PackagingStructure{
				{Unit: "case", Stock: 1},
				{Unit: "  ", Qty: 6},
			},
			expectError: true,
		},
		{
			name: "non-positive qty below the top layer",
			packaging: PackagingStructure{
				{Unit: "case", Stock: 1},
				{Unit: "piece", Qty: 0},
			},
			expectError: true,
		},
		{
			name: "negative stock",
			packaging: PackagingStructure{
				{Unit: "case", Stock: -1},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.packaging.Validate()
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidPackaging)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestSmallestUnitEquivalent tests conversion down to the smallest layer
func TestSmallestUnitEquivalent(t *testing.T) {
	packaging := createTestPackaging()

	pieces, err := packaging.SmallestUnitEquivalent(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 144, pieces)

	pieces, err = packaging.SmallestUnitEquivalent(2, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, pieces)
}

// TestNormalizeLegacyStock tests conversion of flat legacy stock fields
func TestNormalizeLegacyStock(t *testing.T) {
	t.Run("full legacy hierarchy", func(t *testing.T) {
		legacy := LegacyStockFields{
			SupplierUnit:            "carton",
			HasSubUnits:             true,
			SubUnitName:             "packet",
			SubUnitsPerSupplierUnit: 10,
			PiecesPerSubUnit:        24,
			StockInSupplierUnits:    7,
			StockInSubUnits:         3,
			SellingPricePerSubUnit:  120,
			SellingPricePerPiece:    6,
		}

		packaging := NormalizeLegacyStock(legacy)
		require.Len(t, packaging, 3)

		assert.Equal(t, "carton", packaging[0].Unit)
		assert.Equal(t, 7, packaging[0].Stock)
		assert.Equal(t, "packet", packaging[1].Unit)
		assert.Equal(t, 10, packaging[1].Qty)
		assert.Equal(t, 3, packaging[1].Stock)
		assert.Equal(t, 120.0, packaging[1].SellingPrice)
		assert.Equal(t, "piece", packaging[2].Unit)
		assert.Equal(t, 24, packaging[2].Qty)
		assert.Equal(t, 6.0, packaging[2].SellingPrice)
	})

	t.Run("supplier unit only", func(t *testing.T) {
		legacy := LegacyStockFields{
			SupplierUnit:         "sack",
			StockInSupplierUnits: 12,
		}

		packaging := NormalizeLegacyStock(legacy)
		require.Len(t, packaging, 1)
		assert.Equal(t, "sack", packaging[0].Unit)
		assert.Equal(t, 12, packaging[0].Stock)
	})

	t.Run("blank supplier unit defaults", func(t *testing.T) {
		packaging := NormalizeLegacyStock(LegacyStockFields{StockInSupplierUnits: 2})
		require.Len(t, packaging, 1)
		assert.Equal(t, "unit", packaging[0].Unit)
	})
}
