package domain

import "strings"

// PackagingLayer is one level of a nested unit hierarchy. Index 0 is the
// largest unit; each deeper layer's Qty says how many of it fit in one unit
// of the parent layer. Qty on layer 0 is unused.
type PackagingLayer struct {
	Unit         string  `bson:"unit" json:"unit"`
	Qty          int     `bson:"qty" json:"qty"`
	Stock        int     `bson:"stock" json:"stock"`
	SellingPrice float64 `bson:"sellingPrice" json:"sellingPrice"`
}

// PackagingStructure is the ordered layer hierarchy of a catalog item
type PackagingStructure []PackagingLayer

// FindLayerIndex locates a layer by unit name, compared case-insensitively.
// Returns -1 when no layer matches so callers can test membership first.
func (p PackagingStructure) FindLayerIndex(unitName string) int {
	for i, layer := range p {
		if strings.EqualFold(layer.Unit, unitName) {
			return i
		}
	}
	return -1
}

// ConversionRatio computes the multiplicative factor converting a quantity at
// sourceIndex into the equivalent quantity at targetIndex. Defined only when
// the target is a strictly smaller nested unit (sourceIndex < targetIndex);
// breaking up the hierarchy is not supported.
func (p PackagingStructure) ConversionRatio(sourceIndex, targetIndex int) (int, error) {
	if sourceIndex < 0 || targetIndex >= len(p) {
		return 0, ErrInvalidConversion
	}
	if sourceIndex >= targetIndex {
		return 0, ErrInvalidConversion
	}

	ratio := 1
	for i := sourceIndex + 1; i <= targetIndex; i++ {
		if p[i].Qty <= 0 {
			return 0, ErrInvalidConversion
		}
		ratio *= p[i].Qty
	}
	return ratio, nil
}

// Validate checks structural invariants: at least one layer, non-empty unit
// names, and positive Qty on every layer below the top
func (p PackagingStructure) Validate() error {
	if len(p) == 0 {
		return ErrInvalidPackaging
	}
	for i, layer := range p {
		if strings.TrimSpace(layer.Unit) == "" {
			return ErrInvalidPackaging
		}
		if i > 0 && layer.Qty <= 0 {
			return ErrInvalidPackaging
		}
		if layer.Stock < 0 || layer.SellingPrice < 0 {
			return ErrInvalidPackaging
		}
	}
	return nil
}

// SmallestUnitEquivalent converts a quantity at the given layer into the
// equivalent quantity at the deepest layer. Used to check conservation.
func (p PackagingStructure) SmallestUnitEquivalent(layerIndex, quantity int) (int, error) {
	if layerIndex < 0 || layerIndex >= len(p) {
		return 0, ErrInvalidConversion
	}
	if layerIndex == len(p)-1 {
		return quantity, nil
	}
	ratio, err := p.ConversionRatio(layerIndex, len(p)-1)
	if err != nil {
		return 0, err
	}
	return quantity * ratio, nil
}

// LegacyStockFields is the historical flat representation of a two- or
// three-layer hierarchy stored directly on the inventory document
type LegacyStockFields struct {
	SupplierUnit            string  `bson:"supplierUnit,omitempty"`
	HasSubUnits             bool    `bson:"hasSubUnits,omitempty"`
	SubUnitName             string  `bson:"subUnitName,omitempty"`
	SubUnitsPerSupplierUnit int     `bson:"subUnitsPerSupplierUnit,omitempty"`
	PiecesPerSubUnit        int     `bson:"piecesPerSubUnit,omitempty"`
	StockInSupplierUnits    int     `bson:"stockInSupplierUnits,omitempty"`
	StockInSubUnits         int     `bson:"stockInSubUnits,omitempty"`
	SellingPricePerSubUnit  float64 `bson:"sellingPricePerSubUnit,omitempty"`
	SellingPricePerPiece    float64 `bson:"sellingPricePerPiece,omitempty"`
}

// NormalizeLegacyStock converts legacy flat stock fields into a
// PackagingStructure. This is the single normalization point; everything past
// the repository boundary sees only per-layer stock.
func NormalizeLegacyStock(legacy LegacyStockFields) PackagingStructure {
	supplierUnit := legacy.SupplierUnit
	if supplierUnit == "" {
		supplierUnit = "unit"
	}

	packaging := PackagingStructure{
		{Unit: supplierUnit, Stock: legacy.StockInSupplierUnits},
	}

	if legacy.HasSubUnits && legacy.SubUnitName != "" {
		packaging = append(packaging, PackagingLayer{
			Unit:         legacy.SubUnitName,
			Qty:          legacy.SubUnitsPerSupplierUnit,
			Stock:        legacy.StockInSubUnits,
			SellingPrice: legacy.SellingPricePerSubUnit,
		})
		if legacy.PiecesPerSubUnit > 0 {
			packaging = append(packaging, PackagingLayer{
				Unit:         "piece",
				Qty:          legacy.PiecesPerSubUnit,
				SellingPrice: legacy.SellingPricePerPiece,
			})
		}
	}

	return packaging
}
