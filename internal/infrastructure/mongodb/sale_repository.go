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

const defaultSalesLimit = 200

// SaleRepository persists sales in the sales collection. Sale documents are
// immutable once written.
type SaleRepository struct {
	collection *mongodb.CircuitBreakerCollection
}

// NewSaleRepository creates a new SaleRepository
func NewSaleRepository(client *mongodb.CircuitBreakerClient) *SaleRepository {
	repo := &SaleRepository{
		collection: client.Collection("sales"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SaleRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "saleId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "vehicleId", Value: 1}, {Key: "soldAt", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}
	for _, model := range models {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// Save inserts a new sale
func (r *SaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	if _, err := r.collection.InsertOne(ctx, sale); err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}
	return nil
}

// FindBySaleID retrieves a sale by its business key
func (r *SaleRepository) FindBySaleID(ctx context.Context, saleID string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.collection.FindOne(ctx, bson.M{"saleId": saleID}).Decode(&sale)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// List retrieves sales matching the filter, newest first
func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	mongoFilter := bson.M{}
	if filter.VehicleID != nil && *filter.VehicleID != "" {
		mongoFilter["vehicleId"] = *filter.VehicleID
	}
	if filter.Date != nil && *filter.Date != "" {
		mongoFilter["date"] = *filter.Date
	} else if filter.FromDate != nil || filter.ToDate != nil {
		dateRange := bson.M{}
		if filter.FromDate != nil && *filter.FromDate != "" {
			dateRange["$gte"] = *filter.FromDate
		}
		if filter.ToDate != nil && *filter.ToDate != "" {
			dateRange["$lte"] = *filter.ToDate
		}
		if len(dateRange) > 0 {
			mongoFilter["date"] = dateRange
		}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSalesLimit
	}

	opts := options.Find().
		SetSort(mongodb.SortDescending("soldAt")).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sales []*domain.Sale
	err = cursor.All(ctx, &sales)
	return sales, err
}
