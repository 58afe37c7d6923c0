package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutKind identifies who receives a payout offer
type PayoutKind string

const (
	PayoutKindWinner PayoutKind = "winner"
	PayoutKindHouse  PayoutKind = "house"
)

// PayoutStatus is the tracked state of a trade offer
type PayoutStatus string

const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusSent     PayoutStatus = "sent"
	PayoutStatusAccepted PayoutStatus = "accepted"
	PayoutStatusDeclined PayoutStatus = "declined"
	PayoutStatusFailed   PayoutStatus = "failed"
)

// WinnerOfferMessage is attached to the winner's trade offer
const WinnerOfferMessage = "Congratulations! You have won the jackpot!"

// PayoutAsset identifies one escrow asset included in an offer
type PayoutAsset struct {
	AssetID   string `bson:"assetId" json:"assetId"`
	AppID     int    `bson:"appId" json:"appId"`
	ContextID string `bson:"contextId" json:"contextId"`
}

// Payout tracks one outbound trade offer for a completed round
type Payout struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	JackpotID   primitive.ObjectID  `bson:"jackpotId" json:"jackpotId"`
	Kind        PayoutKind          `bson:"kind" json:"kind"`
	UserID      *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Destination string              `bson:"destination" json:"destination"`
	Message     string              `bson:"message,omitempty" json:"message,omitempty"`
	Assets      []PayoutAsset       `bson:"assets" json:"assets"`
	OfferID     string              `bson:"offerId,omitempty" json:"offerId,omitempty"`
	Status      PayoutStatus        `bson:"status" json:"status"`
	Error       string              `bson:"error,omitempty" json:"error,omitempty"`
	Attempts    int                 `bson:"attempts" json:"attempts"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the payout needs no further polling
func (p *Payout) IsTerminal() bool {
	switch p.Status {
	case PayoutStatusAccepted, PayoutStatusDeclined, PayoutStatusFailed:
		return true
	}
	return false
}
