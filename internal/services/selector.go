package services

import (
	"crypto/rand"
	"encoding/binary"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrEmptyPool is returned when a draw has nobody to select
var ErrEmptyPool = errors.New("no contributions to select from")

// RandomSource yields uniformly distributed values in [0, 1)
type RandomSource interface {
	Float64() float64
}

// CryptoSource draws from crypto/rand using 53 random bits per value
type CryptoSource struct{}

// Float64 returns a uniform value in [0, 1)
func (CryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// Selection is the outcome of a weighted draw
type Selection struct {
	Index  int
	Random float64
}

// WeightedSelector picks a participant with probability proportional to
// its contribution
type WeightedSelector struct {
	rng RandomSource
}

// NewWeightedSelector creates a selector; a nil source uses CryptoSource
func NewWeightedSelector(rng RandomSource) *WeightedSelector {
	if rng == nil {
		rng = CryptoSource{}
	}
	return &WeightedSelector{rng: rng}
}

// Select draws r uniformly in [0, total) and returns the entry whose
// interval contains it
func (s *WeightedSelector) Select(contributions []Contribution, total decimal.Decimal) (Selection, error) {
	if len(contributions) == 0 || !total.IsPositive() {
		return Selection{}, ErrEmptyPool
	}
	r := s.rng.Float64() * total.InexactFloat64()
	return Selection{Index: SelectIndex(contributions, r), Random: r}, nil
}

// SelectIndex walks the entries accumulating contributions and returns the
// first index with r < cumulative. Intervals are half-open, so r equal to a
// boundary belongs to the next entry. If rounding leaves r past the last
// boundary, the last entry is selected.
func SelectIndex(contributions []Contribution, r float64) int {
	cumulative := 0.0
	for i, c := range contributions {
		cumulative += c.Value.InexactFloat64()
		if r < cumulative {
			return i
		}
	}
	return len(contributions) - 1
}
