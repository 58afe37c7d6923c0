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

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// EnsureIndexes creates the unique Steam id index
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "steamId", Value: 1}},
		Options: options.Index().SetName("steam_id_unique").SetUnique(true),
	})
	return err
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &user, nil
}

// FindByIDs finds every user whose ID is in ids
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	opts := options.Find().SetProjection(bson.M{"gameHistory": 0})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindBySteamID finds a user by Steam id
func (r *UserRepository) FindBySteamID(ctx context.Context, steamID string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"steamId": steamID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertSteamProfile creates the user on first login and refreshes the
// profile fields on later ones
func (r *UserRepository) UpsertSteamProfile(ctx context.Context, profile models.SteamProfile) (*models.User, error) {
	now := time.Now()
	filter := bson.M{"steamId": profile.SteamID}
	update := bson.M{
		"$set": bson.M{
			"username":   profile.Username,
			"profileUrl": profile.ProfileURL,
			"avatar":     profile.Avatar,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"steamId":     profile.SteamID,
			"deposited":   0.0,
			"totalWon":    0.0,
			"profit":      0.0,
			"gameHistory": bson.A{},
			"createdAt":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetTradeURL stores the payout destination of a user
func (r *UserRepository) SetTradeURL(ctx context.Context, id primitive.ObjectID, tradeURL string) error {
	update := bson.M{"$set": bson.M{"tradeUrl": tradeURL, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyRoundOutcome atomically adds a round's result to the running statistics.
// The filter on gameHistory makes a repeated call for the same round a no-op.
func (r *UserRepository) ApplyRoundOutcome(ctx context.Context, id primitive.ObjectID, entry models.GameHistoryEntry) (bool, error) {
	filter := bson.M{
		"_id":                   id,
		"gameHistory.jackpotId": bson.M{"$ne": entry.JackpotID},
	}
	update := bson.M{
		"$inc": bson.M{
			"deposited": entry.Deposited,
			"totalWon":  entry.TotalWon,
			"profit":    entry.Profit,
		},
		"$push": bson.M{"gameHistory": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
