package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GamemodeClassic is the only game mode currently played
const GamemodeClassic = "Classic"

// Avatar holds the Steam avatar URLs of a user
type Avatar struct {
	Small  string `bson:"small" json:"small"`
	Medium string `bson:"medium" json:"medium"`
	Large  string `bson:"large" json:"large"`
}

// User represents a player account linked to a Steam identity
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SteamID     string             `bson:"steamId" json:"steamId"`
	Username    string             `bson:"username" json:"username"`
	ProfileURL  string             `bson:"profileUrl,omitempty" json:"profileUrl,omitempty"`
	TradeURL    string             `bson:"tradeUrl,omitempty" json:"tradeUrl,omitempty"`
	Avatar      Avatar             `bson:"avatar" json:"avatar"`
	Deposited   float64            `bson:"deposited" json:"deposited"`
	TotalWon    float64            `bson:"totalWon" json:"totalWon"`
	Profit      float64            `bson:"profit" json:"profit"`
	GameHistory []GameHistoryEntry `bson:"gameHistory" json:"gameHistory"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// GameHistoryEntry is the per-round outcome of one user
type GameHistoryEntry struct {
	JackpotID    primitive.ObjectID `bson:"jackpotId" json:"jackpotId"`
	Deposited    float64            `bson:"deposited" json:"deposited"`
	TotalWon     float64            `bson:"totalWon" json:"totalWon"`
	Profit       float64            `bson:"profit" json:"profit"`
	Chance       string             `bson:"chance" json:"chance"`
	Gamemode     string             `bson:"gamemode" json:"gamemode"`
	WinningTrade string             `bson:"winningTrade,omitempty" json:"winningTrade,omitempty"`
	IsWinner     bool               `bson:"isWinner" json:"isWinner"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// SteamProfile is the identity data received after a Steam login
type SteamProfile struct {
	SteamID    string
	Username   string
	ProfileURL string
	Avatar     Avatar
}
