package projections

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"
)

// VehicleStockRepository handles read model persistence
type VehicleStockRepository struct {
	collection *mongodb.CircuitBreakerCollection
}

// NewVehicleStockRepository creates a new MongoDB-backed projection repository
func NewVehicleStockRepository(client *mongodb.CircuitBreakerClient) *VehicleStockRepository {
	repo := &VehicleStockRepository{
		collection: client.Collection("vehicle_stock_projections"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *VehicleStockRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "vehicleId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	for _, model := range models {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// Upsert creates or updates a projection
func (r *VehicleStockRepository) Upsert(ctx context.Context, projection *VehicleStockProjection) error {
	projection.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"vehicleId": projection.VehicleID}
	update := bson.M{"$set": projection}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert vehicle stock projection: %w", err)
	}
	return nil
}

// FindByVehicleID finds a projection by vehicle ID
func (r *VehicleStockRepository) FindByVehicleID(ctx context.Context, vehicleID string) (*VehicleStockProjection, error) {
	var projection VehicleStockProjection
	err := r.collection.FindOne(ctx, bson.M{"vehicleId": vehicleID}).Decode(&projection)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vehicle stock projection: %w", err)
	}
	return &projection, nil
}
