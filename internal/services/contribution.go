package services

import (
	"regexp"
	"strings"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prices are stored as "<number> <currency>", e.g. "12.34 USD". The
// prefix follows float literal syntax: ".5", "5." and exponents like "1e2"
// are accepted, a sign is not.
var pricePrefix = regexp.MustCompile(`^\s*(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice returns the numeric prefix of a price string. Prices without
// a numeric prefix are worth zero.
func ParsePrice(price string) decimal.Decimal {
	match := pricePrefix.FindString(price)
	if match == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(strings.TrimSpace(match))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// FormatPrice renders a price the way items store it
func FormatPrice(value decimal.Decimal) string {
	return value.StringFixed(2) + " USD"
}

// ContributionOf sums the parsed prices of items
func ContributionOf(items []*models.Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item == nil {
			continue
		}
		total = total.Add(ParsePrice(item.Price))
	}
	return total
}

// Contribution is the value one participant entry put into a round
type Contribution struct {
	Index       int
	Participant models.Participant
	Value       decimal.Decimal
}

// UserContribution is the combined value of all entries of one user
type UserContribution struct {
	UserID primitive.ObjectID
	Value  decimal.Decimal
}

// Aggregate holds per-entry contributions and the round total
type Aggregate struct {
	Contributions []Contribution
	Total         decimal.Decimal
}

// AggregateContributions computes each entry's contribution from resolved
// items. Items missing from the map contribute nothing.
func AggregateContributions(participants []models.Participant, items map[primitive.ObjectID]*models.Item) Aggregate {
	agg := Aggregate{
		Contributions: make([]Contribution, 0, len(participants)),
		Total:         decimal.Zero,
	}
	for i, p := range participants {
		resolved := lo.FilterMap(p.Items, func(id primitive.ObjectID, _ int) (*models.Item, bool) {
			item, ok := items[id]
			return item, ok
		})
		value := ContributionOf(resolved)
		agg.Contributions = append(agg.Contributions, Contribution{Index: i, Participant: p, Value: value})
		agg.Total = agg.Total.Add(value)
	}
	return agg
}

// ByUser folds entries into one contribution per user, in order of first join
func (a Aggregate) ByUser() []UserContribution {
	order := lo.Uniq(lo.Map(a.Contributions, func(c Contribution, _ int) primitive.ObjectID {
		return c.Participant.User
	}))
	sums := lo.GroupBy(a.Contributions, func(c Contribution) primitive.ObjectID {
		return c.Participant.User
	})
	return lo.Map(order, func(userID primitive.ObjectID, _ int) UserContribution {
		value := decimal.Zero
		for _, c := range sums[userID] {
			value = value.Add(c.Value)
		}
		return UserContribution{UserID: userID, Value: value}
	})
}

// Chance formats value/total as a percentage with two decimals
func Chance(value, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.00%"
	}
	return value.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
