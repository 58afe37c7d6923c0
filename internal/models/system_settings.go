package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemSettings holds operator-tunable game settings.
// A single document lives in the "system_settings" collection.
type SystemSettings struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CommissionPercentage int                `bson:"commissionPercentage" json:"commissionPercentage"`
	JoinsPaused          bool               `bson:"joinsPaused" json:"joinsPaused"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy            string             `bson:"updatedBy" json:"updatedBy"`
}
