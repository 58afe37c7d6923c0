package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.AdminUserRepository = (*AdminUserRepository)(nil)

// AdminUserRepository keeps operator accounts keyed by lower-case email
type AdminUserRepository struct {
	collection *mongo.Collection
}

func NewAdminUserRepository(db *mongo.Database) *AdminUserRepository {
	return &AdminUserRepository{
		collection: db.Collection("admin_users"),
	}
}

// EnsureIndexes makes email unique
func (r *AdminUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_unique").SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user indexes: %w", err)
	}
	return nil
}

// Create stores a new account. A taken email yields repositories.ErrDuplicate.
func (r *AdminUserRepository) Create(ctx context.Context, admin *models.AdminUser) (*models.AdminUser, error) {
	now := time.Now()
	admin.ID = primitive.NewObjectID()
	admin.Email = normalizeEmail(admin.Email)
	admin.CreatedAt, admin.UpdatedAt = now, now
	if _, err := r.collection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repositories.ErrDuplicate
		}
		return nil, err
	}
	return admin, nil
}

func (r *AdminUserRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
