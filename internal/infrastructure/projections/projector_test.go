package projections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/events"
	"github.com/Hiuhuedd/migingo-backend/pkg/logging"
)

type stubIssuanceRepo struct {
	issuances []*domain.Issuance
}

func (s *stubIssuanceRepo) Save(ctx context.Context, issuance *domain.Issuance) error   { return nil }
func (s *stubIssuanceRepo) Update(ctx context.Context, issuance *domain.Issuance) error { return nil }

func (s *stubIssuanceRepo) FindByIssuanceID(ctx context.Context, issuanceID string) (*domain.Issuance, error) {
	return nil, nil
}

func (s *stubIssuanceRepo) FindByVehicleID(ctx context.Context, vehicleID string, pagination domain.Pagination) ([]*domain.Issuance, error) {
	return s.FindByVehicleIDOldestFirst(ctx, vehicleID)
}

func (s *stubIssuanceRepo) FindByVehicleIDOldestFirst(ctx context.Context, vehicleID string) ([]*domain.Issuance, error) {
	var result []*domain.Issuance
	for _, iss := range s.issuances {
		if iss.VehicleID == vehicleID {
			result = append(result, iss)
		}
	}
	return result, nil
}

type capturingStockWriter struct {
	last *VehicleStockProjection
}

func (c *capturingStockWriter) Upsert(ctx context.Context, projection *VehicleStockProjection) error {
	c.last = projection
	return nil
}

func TestProjectorRebuild(t *testing.T) {
	makeIssuance := func(t *testing.T, id string, crates int, collect bool) *domain.Issuance {
		t.Helper()
		issuance, err := domain.NewIssuance(id, "VEH-001", []domain.IssuedItem{
			{
				InventoryID: "INV-001",
				ProductName: "Omena",
				Layers: []domain.IssuedLayer{
					{LayerIndex: 1, Unit: "crate", Quantity: crates, SellingPrice: 550},
				},
			},
		}, "")
		require.NoError(t, err)
		if collect {
			require.NoError(t, issuance.CollectLayer(0, 0))
		}
		return issuance
	}

	first := makeIssuance(t, "ISS-a", 10, true)
	first.Items[0].Layers[0].SoldQty = 4
	second := makeIssuance(t, "ISS-b", 5, true)
	third := makeIssuance(t, "ISS-c", 2, false)

	repo := &stubIssuanceRepo{issuances: []*domain.Issuance{first, second, third}}
	writer := &capturingStockWriter{}
	projector := NewProjector(repo, writer, logging.New(logging.DefaultConfig("test")))

	require.NoError(t, projector.Rebuild(context.Background(), "VEH-001"))
	require.NotNil(t, writer.last)

	projection := writer.last
	assert.Equal(t, "VEH-001", projection.VehicleID)
	assert.Equal(t, 1, projection.IssuedCount)
	assert.Equal(t, 2, projection.CollectedCount)
	assert.Zero(t, projection.PartialCount)

	// Collected layers merge by item and unit; uncollected layers are excluded
	require.Len(t, projection.Entries, 1)
	entry := projection.Entries[0]
	assert.Equal(t, "INV-001", entry.InventoryID)
	assert.Equal(t, "crate", entry.Unit)
	assert.Equal(t, 15, entry.CollectedQty)
	assert.Equal(t, 4, entry.SoldQty)
	assert.Equal(t, 11, entry.Available)
	assert.Equal(t, 550.0, entry.SellingPrice)
}

func TestVehicleIDFromEvent(t *testing.T) {
	event := &events.Event{Data: map[string]interface{}{"vehicleId": "VEH-001"}}
	assert.Equal(t, "VEH-001", vehicleIDFromEvent(event))

	assert.Empty(t, vehicleIDFromEvent(&events.Event{Data: map[string]interface{}{"other": 1}}))
	assert.Empty(t, vehicleIDFromEvent(&events.Event{Data: "not a map"}))
	assert.Empty(t, vehicleIDFromEvent(&events.Event{}))
}
