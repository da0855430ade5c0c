package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hiuhuedd/migingo-backend/internal/domain"
	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"
)

// InventoryRepository persists catalog items in the inventory collection.
// Documents written before the per-layer stock model carry flat stock fields;
// those are normalized into a packaging structure on read.
type InventoryRepository struct {
	collection *mongodb.CircuitBreakerCollection
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(client *mongodb.CircuitBreakerClient) *InventoryRepository {
	repo := &InventoryRepository{
		collection: client.Collection("inventory"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *InventoryRepository) ensureIndexes(ctx context.Context) {
	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "productNameLower", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"isDeleted": bson.M{"$ne": true}}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "dateAdded", Value: -1}}},
	}
	for _, model := range models {
		_, _ = r.collection.CreateIndex(ctx, model)
	}
}

// inventoryDoc carries both the current shape and the legacy flat stock
// fields so old documents decode without a migration
type inventoryDoc struct {
	domain.InventoryItem     `bson:",inline"`
	domain.LegacyStockFields `bson:",inline"`
}

func (d *inventoryDoc) toItem() *domain.InventoryItem {
	item := d.InventoryItem
	if len(item.PackagingStructure) == 0 {
		item.PackagingStructure = domain.NormalizeLegacyStock(d.LegacyStockFields)
	}
	return &item
}

// Save persists a catalog item (upsert by id)
func (r *InventoryRepository) Save(ctx context.Context, item *domain.InventoryItem) error {
	filter := bson.M{"_id": item.ID}
	update := bson.M{"$set": item}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save inventory item: %w", err)
	}
	return nil
}

// FindByID retrieves an item by its hex ObjectID
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*domain.InventoryItem, error) {
	objectID, err := mongodb.ParseID(id)
	if err != nil {
		return nil, nil
	}

	var doc inventoryDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toItem(), nil
}

// FindByName retrieves a non-deleted item by exact case-insensitive name
func (r *InventoryRepository) FindByName(ctx context.Context, productName string) (*domain.InventoryItem, error) {
	filter := mongodb.NotDeletedFilter()
	filter["productNameLower"] = strings.ToLower(strings.TrimSpace(productName))

	var doc inventoryDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toItem(), nil
}

// List retrieves items matching the filter, sorted by name
func (r *InventoryRepository) List(ctx context.Context, filter domain.InventoryFilter, pagination domain.Pagination) ([]*domain.InventoryItem, error) {
	mongoFilter := r.buildFilter(filter)

	opts := options.Find().
		SetSort(mongodb.SortAscending("productNameLower")).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, mongoFilter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []inventoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]*domain.InventoryItem, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toItem())
	}
	return items, nil
}

// DecrementLayerStock atomically decrements one layer's stock. The filter
// requires enough stock, so the decrement can never go below zero; a zero
// match surfaces as insufficient stock.
func (r *InventoryRepository) DecrementLayerStock(ctx context.Context, id string, layerIndex, quantity int) error {
	objectID, err := mongodb.ParseID(id)
	if err != nil {
		return domain.ErrInventoryNotFound
	}

	stockField := fmt.Sprintf("packagingStructure.%d.stock", layerIndex)
	filter := bson.M{
		"_id":      objectID,
		stockField: bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{stockField: -quantity},
		"$set": bson.M{"lastUpdated": mongodb.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement layer stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

// Count returns the number of items matching the filter
func (r *InventoryRepository) Count(ctx context.Context, filter domain.InventoryFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, r.buildFilter(filter))
}

func (r *InventoryRepository) buildFilter(filter domain.InventoryFilter) bson.M {
	mongoFilter := bson.M{}
	if !filter.IncludeDeleted {
		mongoFilter = mongodb.NotDeletedFilter()
	}
	if filter.Search != nil && *filter.Search != "" {
		prefix := regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(*filter.Search)))
		mongoFilter["productNameLower"] = primitive.Regex{Pattern: "^" + prefix}
	}
	if filter.Category != nil && *filter.Category != "" {
		mongoFilter["category"] = *filter.Category
	}
	return mongoFilter
}
