package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure JackpotRepository implements the interface
var _ repositories.JackpotRepository = (*JackpotRepository)(nil)

var openStatuses = bson.A{models.RoundStatusWaiting, models.RoundStatusInProgress}

// JackpotRepository handles MongoDB operations for jackpot rounds
type JackpotRepository struct {
	collection *mongo.Collection
}

// NewJackpotRepository creates a new JackpotRepository
func NewJackpotRepository(db *mongo.Database) *JackpotRepository {
	return &JackpotRepository{
		collection: db.Collection("jackpots"),
	}
}

// EnsureIndexes creates the single-open-round index and the history indexes
func (r *JackpotRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "activeSlot", Value: 1}},
			Options: options.Index().
				SetName("active_slot_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"activeSlot": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index().SetName("status_completed_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create jackpot indexes: %w", err)
	}
	return nil
}

// FindActive finds the round that is waiting or in progress
func (r *JackpotRepository) FindActive(ctx context.Context) (*models.Jackpot, error) {
	var jackpot models.Jackpot
	filter := bson.M{"status": bson.M{"$in": openStatuses}}
	err := r.collection.FindOne(ctx, filter).Decode(&jackpot)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &jackpot, nil
}

// FindOrCreateActive returns the open round or inserts a new waiting one.
// Losing an insert race against another writer returns the winner's round.
func (r *JackpotRepository) FindOrCreateActive(ctx context.Context, commissionPercentage int) (*models.Jackpot, error) {
	jackpot, err := r.FindActive(ctx)
	if err == nil {
		return jackpot, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	now := time.Now()
	jackpot = &models.Jackpot{
		ID:                   primitive.NewObjectID(),
		Status:               models.RoundStatusWaiting,
		Participants:         []models.Participant{},
		CommissionPercentage: commissionPercentage,
		ActiveSlot:           models.ActiveSlotKey,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	_, err = r.collection.InsertOne(ctx, jackpot)
	if mongo.IsDuplicateKeyError(err) {
		return r.FindActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	return jackpot, nil
}

// FindByID finds a round by ID
func (r *JackpotRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Jackpot, error) {
	var jackpot models.Jackpot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&jackpot)
	if err != nil {
		return nil, err
	}
	return &jackpot, nil
}

// AppendParticipant atomically appends an entry to an open round
func (r *JackpotRepository) AppendParticipant(ctx context.Context, id primitive.ObjectID, expectedVersion int64, participant models.Participant, totalValue float64) (*models.Jackpot, error) {
	filter := bson.M{
		"_id":     id,
		"version": expectedVersion,
		"status":  bson.M{"$in": openStatuses},
	}
	update := bson.M{
		"$push": bson.M{"participants": participant},
		"$set":  bson.M{"totalValue": totalValue, "updatedAt": time.Now()},
		"$inc":  bson.M{"version": 1},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Transition atomically moves a round between statuses
func (r *JackpotRepository) Transition(ctx context.Context, id primitive.ObjectID, expectedVersion int64, from models.RoundStatus, t repositories.RoundTransition) (*models.Jackpot, error) {
	filter := bson.M{
		"_id":     id,
		"version": expectedVersion,
		"status":  from,
	}
	set := bson.M{"status": t.To, "updatedAt": time.Now()}
	if t.Winner != nil {
		set["winner"] = t.Winner
	}
	if t.Draw != nil {
		set["draw"] = t.Draw
	}
	if t.StartedAt != nil {
		set["startedAt"] = t.StartedAt
	}
	if t.EndsAt != nil {
		set["endsAt"] = t.EndsAt
	}
	if t.CompletedAt != nil {
		set["completedAt"] = t.CompletedAt
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if t.To == models.RoundStatusCompleted {
		update["$unset"] = bson.M{"activeSlot": ""}
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// FindCompletedSince returns completed rounds finished after since, newest first
func (r *JackpotRepository) FindCompletedSince(ctx context.Context, since time.Time) ([]*models.Jackpot, error) {
	filter := bson.M{
		"status":      models.RoundStatusCompleted,
		"completedAt": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	return r.find(ctx, filter, opts)
}

// FindLastCompleted returns the most recent completed rounds
func (r *JackpotRepository) FindLastCompleted(ctx context.Context, limit int64) ([]*models.Jackpot, error) {
	filter := bson.M{"status": models.RoundStatusCompleted}
	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *JackpotRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Jackpot, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var jackpot models.Jackpot
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&jackpot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &jackpot, nil
}

func (r *JackpotRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Jackpot, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jackpots []*models.Jackpot
	if err = cursor.All(ctx, &jackpots); err != nil {
		return nil, err
	}
	if jackpots == nil {
		jackpots = []*models.Jackpot{}
	}
	return jackpots, nil
}
