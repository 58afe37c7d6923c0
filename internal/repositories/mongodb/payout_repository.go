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

// Compile-time check to ensure PayoutRepository implements the interface
var _ repositories.PayoutRepository = (*PayoutRepository)(nil)

// PayoutRepository handles MongoDB operations for payout tracking
type PayoutRepository struct {
	collection *mongo.Collection
}

// NewPayoutRepository creates a new PayoutRepository
func NewPayoutRepository(db *mongo.Database) *PayoutRepository {
	return &PayoutRepository{
		collection: db.Collection("payouts"),
	}
}

// Create inserts a new payout record
func (r *PayoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	payout.ID = primitive.NewObjectID()
	payout.CreatedAt = time.Now()
	payout.UpdatedAt = payout.CreatedAt
	_, err := r.collection.InsertOne(ctx, payout)
	return err
}

// FindByID finds a payout by ID
func (r *PayoutRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payout, error) {
	var payout models.Payout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payout)
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// FindByStatus lists payouts in a given status, newest first
func (r *PayoutRepository) FindByStatus(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"status": status}, opts)
}

// FindByJackpot lists the payouts of one round in creation order
func (r *PayoutRepository) FindByJackpot(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, bson.M{"jackpotId": jackpotID}, opts)
}

// UpdateStatus records the latest known state of an offer
func (r *PayoutRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PayoutStatus, offerID, errMsg string) error {
	set := bson.M{"status": status, "error": errMsg, "updatedAt": time.Now()}
	if offerID != "" {
		set["offerId"] = offerID
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// IncrementAttempts counts one more dispatch attempt
func (r *PayoutRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// SetDestination fills in the trade url of a payout that was recorded without one
func (r *PayoutRepository) SetDestination(ctx context.Context, id primitive.ObjectID, destination string) error {
	update := bson.M{"$set": bson.M{"destination": destination, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *PayoutRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Payout, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payouts []*models.Payout
	if err = cursor.All(ctx, &payouts); err != nil {
		return nil, err
	}
	if payouts == nil {
		payouts = []*models.Payout{}
	}
	return payouts, nil
}
