package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundStatus represents the lifecycle state of a jackpot round
type RoundStatus string

const (
	RoundStatusWaiting    RoundStatus = "waiting"
	RoundStatusInProgress RoundStatus = "in_progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

// ActiveSlotKey marks the single open round; a unique partial index on it
// keeps at most one round in waiting or in_progress.
const ActiveSlotKey = "current"

// DefaultCommissionPercentage is the share of the pot kept by the house
const DefaultCommissionPercentage = 10

// Jackpot represents one betting round
type Jackpot struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Status               RoundStatus         `bson:"status" json:"status"`
	Participants         []Participant       `bson:"participants" json:"participants"`
	TotalValue           float64             `bson:"totalValue" json:"totalValue"`
	Winner               *primitive.ObjectID `bson:"winner,omitempty" json:"winner,omitempty"`
	CommissionPercentage int                 `bson:"commissionPercentage" json:"commissionPercentage"`
	Draw                 *DrawAudit          `bson:"draw,omitempty" json:"draw,omitempty"`
	ActiveSlot           string              `bson:"activeSlot,omitempty" json:"-"`
	Version              int64               `bson:"version" json:"-"`
	StartedAt            *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndsAt               *time.Time          `bson:"endsAt,omitempty" json:"endsAt,omitempty"`
	CompletedAt          *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Participant is one join into a round. Repeated joins by the same user
// are stored as separate entries.
type Participant struct {
	EntryID  string               `bson:"entryId" json:"entryId"`
	User     primitive.ObjectID   `bson:"user" json:"user"`
	Items    []primitive.ObjectID `bson:"items" json:"items"`
	Color    string               `bson:"color" json:"color"`
	JoinedAt time.Time            `bson:"joinedAt" json:"joinedAt"`
}

// DrawAudit records the random draw that decided a round
type DrawAudit struct {
	Random       float64   `bson:"random" json:"random"`
	OverallTotal float64   `bson:"overallTotal" json:"overallTotal"`
	WinnerIndex  int       `bson:"winnerIndex" json:"winnerIndex"`
	WinnerEntry  string    `bson:"winnerEntry" json:"winnerEntry"`
	DrawnAt      time.Time `bson:"drawnAt" json:"drawnAt"`
}

// IsOpen reports whether the round still accepts joins
func (j *Jackpot) IsOpen() bool {
	return j.Status == RoundStatusWaiting || j.Status == RoundStatusInProgress
}

// ItemIDs returns every item referenced by the round in participant order
func (j *Jackpot) ItemIDs() []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, p := range j.Participants {
		ids = append(ids, p.Items...)
	}
	return ids
}
