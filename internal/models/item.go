package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAppID is the Steam app whose items are accepted
const DefaultAppID = 252490

// DefaultContextID is the inventory context for DefaultAppID
const DefaultContextID = "2"

// Item is a tradeable asset synced from a user's Steam inventory
type Item struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name       string              `bson:"name" json:"name"`
	IconURL    string              `bson:"iconUrl" json:"iconUrl"`
	Price      string              `bson:"price" json:"price"`
	Tradable   bool                `bson:"tradable" json:"tradable"`
	Owner      primitive.ObjectID  `bson:"owner" json:"owner"`
	AssetID    string              `bson:"assetId" json:"assetId"`
	AppID      int                 `bson:"appId" json:"appId"`
	ContextID  string              `bson:"contextId" json:"contextId"`
	StakedIn   *primitive.ObjectID `bson:"stakedIn,omitempty" json:"stakedIn,omitempty"`
	StakeEntry string              `bson:"stakeEntry,omitempty" json:"-"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MarketPrice is the reference price of an item by market hash name
type MarketPrice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
