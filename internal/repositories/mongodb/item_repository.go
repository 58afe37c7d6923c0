package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure ItemRepository implements the interface
var _ repositories.ItemRepository = (*ItemRepository)(nil)

// ItemRepository handles MongoDB operations for inventory items
type ItemRepository struct {
	collection *mongo.Collection
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{
		collection: db.Collection("items"),
	}
}

// EnsureIndexes creates the asset uniqueness and stake lookup indexes
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner", Value: 1},
				{Key: "appId", Value: 1},
				{Key: "contextId", Value: 1},
				{Key: "assetId", Value: 1},
			},
			Options: options.Index().SetName("owner_asset_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "stakeEntry", Value: 1}},
			Options: options.Index().SetName("stake_entry").SetSparse(true),
		},
	})
	return err
}

// FindByIDs finds every item whose ID is in ids
func (r *ItemRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Item, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// FindByOwner lists the items of a user
func (r *ItemRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Item, error) {
	return r.find(ctx, bson.M{"owner": owner})
}

// Claim marks unstaked items of owner as staked in a round
func (r *ItemRepository) Claim(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID, jackpotID primitive.ObjectID, entryID string) (int64, error) {
	filter := bson.M{
		"_id":      bson.M{"$in": ids},
		"owner":    owner,
		"stakedIn": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{
		"stakedIn":   jackpotID,
		"stakeEntry": entryID,
		"updatedAt":  time.Now(),
	}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Release unstakes the items claimed by one join
func (r *ItemRepository) Release(ctx context.Context, entryID string) error {
	update := bson.M{
		"$unset": bson.M{"stakedIn": "", "stakeEntry": ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"stakeEntry": entryID}, update)
	return err
}

// InsertMany inserts newly synced items
func (r *ItemRepository) InsertMany(ctx context.Context, items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		if item.ID.IsZero() {
			item.ID = primitive.NewObjectID()
		}
		item.CreatedAt = now
		item.UpdatedAt = now
		docs = append(docs, item)
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// DeleteMissing removes unstaked items that left the owner's Steam inventory
func (r *ItemRepository) DeleteMissing(ctx context.Context, owner primitive.ObjectID, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}
	filter := bson.M{
		"owner":    owner,
		"assetId":  bson.M{"$nin": keep},
		"stakedIn": bson.M{"$exists": false},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M) ([]*models.Item, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*models.Item
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}
