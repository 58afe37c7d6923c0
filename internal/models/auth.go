package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRequest defines the structure for admin login requests
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CodeExchangeRequest trades a one-time auth code for a session token
type CodeExchangeRequest struct {
	Code string `json:"code" binding:"required"`
}

// SaveTradeURLRequest registers the payout destination of a user
type SaveTradeURLRequest struct {
	TradeURL string `json:"tradeUrl" binding:"required"`
}

// JoinRequest stakes items into the active round
type JoinRequest struct {
	UserID  string   `json:"userId"`
	ItemIDs []string `json:"itemIds"`
}

// AdminUser is an operator account for payout remediation.
// Stored in the "admin_users" collection.
type AdminUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
