package services

import (
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Realtime event names published to observers
const (
	EventTimer           = "timer"
	EventParticipants    = "participants"
	EventSpin            = "spin"
	EventRoundCompleted  = "roundCompleted"
	EventNextRound       = "nextRound"
	EventNextRoundTimer  = "nextRoundTimer"
	EventNewRoundStarted = "newRoundStarted"
	EventActiveUsers     = "activeUsers"
)

// Notifier is a fire-and-forget broadcast sink
type Notifier interface {
	Publish(event string, payload interface{})
}

// NopNotifier discards every event
type NopNotifier struct{}

// Publish implements Notifier
func (NopNotifier) Publish(string, interface{}) {}

// TimerPayload is sent once per second while a round is running
type TimerPayload struct {
	JackpotID primitive.ObjectID `json:"jackpotId"`
	TimeLeft  int                `json:"timeLeft"`
}

// ParticipantsPayload is sent after every accepted join
type ParticipantsPayload struct {
	JackpotID    primitive.ObjectID       `json:"jackpotId"`
	Status       models.RoundStatus       `json:"status"`
	Participants []models.ParticipantView `json:"participants"`
	TotalValue   float64                  `json:"totalValue"`
}

// SpinWinner summarises the winner for the wheel animation
type SpinWinner struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	Items      []*models.Item     `json:"items"`
	TotalValue float64            `json:"totalValue"`
	SkinCount  int                `json:"skinCount"`
	Img        string             `json:"img"`
	Color      string             `json:"color"`
}

// SpinPayload lets every observer animate the wheel in sync. StartTime is
// a unix timestamp in milliseconds and Duration is in milliseconds.
type SpinPayload struct {
	JackpotID   primitive.ObjectID `json:"jackpotId"`
	Winner      SpinWinner         `json:"winnerId"`
	WinnerIndex int                `json:"winnerIndex"`
	Angle       float64            `json:"angle"`
	StartTime   int64              `json:"startTime"`
	Duration    int64              `json:"duration"`
}

// RoundCompletedPayload announces a sealed round
type RoundCompletedPayload struct {
	JackpotID  primitive.ObjectID  `json:"jackpotId"`
	Winner     *primitive.ObjectID `json:"winner,omitempty"`
	TotalValue float64             `json:"totalValue"`
}

// NextRoundPayload carries the unix millisecond time the next round opens
type NextRoundPayload struct {
	StartTime int64 `json:"startTime"`
}

// CountdownPayload is sent once per second during the inter-round delay
type CountdownPayload struct {
	TimeLeft int `json:"timeLeft"`
}

// NewRoundPayload announces the fresh waiting round
type NewRoundPayload struct {
	JackpotID primitive.ObjectID `json:"jackpotId"`
}

// ActiveUsersPayload reports how many observers are connected
type ActiveUsersPayload struct {
	Count int `json:"count"`
}
