package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"
)

// IssuanceRepository persists issuances in the stock_issuances collection.
// Issuance documents are mutated in place by collection, break-unit transfer,
// and sale depletion; every write goes through an optimistic version check.
type IssuanceRepository struct {
	collection *mongodb.CircuitBreakerCollection
}

// NewIssuanceRepository creates a new IssuanceRepository
func NewIssuanceRepository(client *mongodb.CircuitBreakerClient) *IssuanceRepository {
	repo := &IssuanceRepository{
		collection: client.Collection("stock_issuances"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *IssuanceRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "issuanceId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "vehicleId", Value: 1}, {Key: "issuedAt", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	for _, model := range models {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// Save inserts a new issuance
func (r *IssuanceRepository) Save(ctx context.Context, issuance *domain.Issuance) error {
	if _, err := r.collection.InsertOne(ctx, issuance); err != nil {
		return fmt.Errorf("failed to save issuance: %w", err)
	}
	return nil
}

// Update persists a mutated issuance. The filter matches the version the
// aggregate was loaded at; a concurrent writer makes it a zero match and the
// caller sees ErrVersionConflict.
func (r *IssuanceRepository) Update(ctx context.Context, issuance *domain.Issuance) error {
	filter := bson.M{
		"issuanceId": issuance.IssuanceID,
		"version":    issuance.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"items":       issuance.Items,
			"status":      issuance.Status,
			"collectedAt": issuance.CollectedAt,
			"notes":       issuance.Notes,
			"lastUpdated": issuance.LastUpdated,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update issuance: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}

	issuance.Version++
	return nil
}

// FindByIssuanceID retrieves an issuance by its business key
func (r *IssuanceRepository) FindByIssuanceID(ctx context.Context, issuanceID string) (*domain.Issuance, error) {
	var issuance domain.Issuance
	err := r.collection.FindOne(ctx, bson.M{"issuanceId": issuanceID}).Decode(&issuance)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issuance, nil
}

// FindByVehicleID retrieves a vehicle's issuances, newest first
func (r *IssuanceRepository) FindByVehicleID(ctx context.Context, vehicleID string, pagination domain.Pagination) ([]*domain.Issuance, error) {
	opts := options.Find().
		SetSort(mongodb.SortDescending("issuedAt")).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, bson.M{"vehicleId": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issuances []*domain.Issuance
	err = cursor.All(ctx, &issuances)
	return issuances, err
}

// FindByVehicleIDOldestFirst retrieves a vehicle's issuances ascending by
// issuedAt. Sale depletion and break-unit transfers consume in this order.
func (r *IssuanceRepository) FindByVehicleIDOldestFirst(ctx context.Context, vehicleID string) ([]*domain.Issuance, error) {
	opts := options.Find().SetSort(mongodb.SortAscending("issuedAt"))

	cursor, err := r.collection.Find(ctx, bson.M{"vehicleId": vehicleID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issuances []*domain.Issuance
	err = cursor.All(ctx, &issuances)
	return issuances, err
}
