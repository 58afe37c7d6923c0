package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantView is a participant with its user and items resolved for display
type ParticipantView struct {
	EntryID      string    `json:"entryId"`
	User         *UserCard `json:"user"`
	Items        []*Item   `json:"items"`
	Color        string    `json:"color"`
	Contribution float64   `json:"contribution"`
}

// UserCard is the public subset of a user shown next to a round
type UserCard struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Avatar   Avatar             `json:"avatar"`
}

// JackpotView is a round with populated participants
type JackpotView struct {
	ID                   primitive.ObjectID `json:"id"`
	Status               RoundStatus        `json:"status"`
	Participants         []ParticipantView  `json:"participants"`
	TotalValue           float64            `json:"totalValue"`
	Winner               *UserCard          `json:"winner,omitempty"`
	CommissionPercentage int                `json:"commissionPercentage"`
	Draw                 *DrawAudit         `json:"draw,omitempty"`
	EndsAt               *time.Time         `json:"endsAt,omitempty"`
	CompletedAt          *time.Time         `json:"completedAt,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

// TimerStatus reports the countdowns currently running
type TimerStatus struct {
	RoundID           *primitive.ObjectID `json:"roundId,omitempty"`
	TimeLeft          int                 `json:"timeLeft"`
	Intermission      bool                `json:"intermission"`
	NextRoundTimeLeft int                 `json:"nextRoundTimeLeft"`
}

// UserStatistics is the statistics payload of a user
type UserStatistics struct {
	Deposited   float64            `json:"deposited"`
	TotalWon    float64            `json:"totalWon"`
	Profit      float64            `json:"profit"`
	GameHistory []GameHistoryEntry `json:"gameHistory"`
}
