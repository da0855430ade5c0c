package mongodb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"
)

// VehicleRepository persists vehicles in the vehicles collection
type VehicleRepository struct {
	collection *mongodb.CircuitBreakerCollection
}

// NewVehicleRepository creates a new VehicleRepository
func NewVehicleRepository(client *mongodb.CircuitBreakerClient) *VehicleRepository {
	repo := &VehicleRepository{
		collection: client.Collection("vehicles"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *VehicleRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "registrationNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dateCreated", Value: -1}}},
	}
	for _, model := range models {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// Save persists a vehicle (upsert by id)
func (r *VehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	filter := bson.M{"_id": vehicle.ID}
	update := bson.M{"$set": vehicle}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// FindByID retrieves a vehicle by its hex ObjectID
func (r *VehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	objectID, err := mongodb.ParseID(id)
	if err != nil {
		return nil, nil
	}

	var vehicle domain.Vehicle
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vehicle)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// FindByRegistration retrieves a vehicle by registration number
func (r *VehicleRepository) FindByRegistration(ctx context.Context, registrationNumber string) (*domain.Vehicle, error) {
	filter := bson.M{"registrationNumber": strings.ToUpper(strings.TrimSpace(registrationNumber))}

	var vehicle domain.Vehicle
	err := r.collection.FindOne(ctx, filter).Decode(&vehicle)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List retrieves vehicles, newest first
func (r *VehicleRepository) List(ctx context.Context, pagination domain.Pagination) ([]*domain.Vehicle, error) {
	opts := options.Find().
		SetSort(mongodb.SortDescending("dateCreated")).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []*domain.Vehicle
	err = cursor.All(ctx, &vehicles)
	return vehicles, err
}
