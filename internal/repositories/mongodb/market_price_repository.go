package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure MarketPriceRepository implements the interface
var _ repositories.MarketPriceRepository = (*MarketPriceRepository)(nil)

// MarketPriceRepository handles MongoDB operations for reference prices
type MarketPriceRepository struct {
	collection *mongo.Collection
}

// NewMarketPriceRepository creates a new MarketPriceRepository
func NewMarketPriceRepository(db *mongo.Database) *MarketPriceRepository {
	return &MarketPriceRepository{
		collection: db.Collection("market_prices"),
	}
}

// FindByNames returns the known price for each market hash name
func (r *MarketPriceRepository) FindByNames(ctx context.Context, names []string) (map[string]float64, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"name": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var prices []models.MarketPrice
	if err = cursor.All(ctx, &prices); err != nil {
		return nil, err
	}
	result := make(map[string]float64, len(prices))
	for _, p := range prices {
		result[p.Name] = p.Price
	}
	return result, nil
}

// UpsertMany writes prices keyed by name in one bulk operation
func (r *MarketPriceRepository) UpsertMany(ctx context.Context, prices []models.MarketPrice) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(prices))
	for _, p := range prices {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"name": p.Name}).
			SetUpdate(bson.M{"$set": bson.M{"name": p.Name, "price": p.Price, "updatedAt": now}}).
			SetUpsert(true))
	}
	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return result.UpsertedCount + result.ModifiedCount, nil
}
