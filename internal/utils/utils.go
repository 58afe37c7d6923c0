package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const colorAlphabet = "0123456789ABCDEF"

// DefaultSpinRotations is the number of full turns the wheel makes before
// landing on the winning segment.
const DefaultSpinRotations = 3

// GenerateRandomColor returns a random "#RRGGBB" colour used to paint a
// participant's wheel segment.
func GenerateRandomColor() string {
	var sb strings.Builder
	sb.Grow(7)
	sb.WriteByte('#')
	max := big.NewInt(int64(len(colorAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			sb.WriteByte('0')
			continue
		}
		sb.WriteByte(colorAlphabet[n.Int64()])
	}
	return sb.String()
}

// CalculateSpinAngle returns the final wheel rotation, in degrees, that lands
// the pointer in the middle of the winner's segment after the given number
// of full rotations.
func CalculateSpinAngle(winnerIndex, totalSegments, rotations int) float64 {
	if totalSegments <= 0 {
		return float64(rotations * 360)
	}
	segment := 360.0 / float64(totalSegments)
	return float64(rotations*360) + float64(winnerIndex)*segment + segment/2
}

// MaskSteamID hides all but the last four characters of a Steam ID for logs.
func MaskSteamID(steamID string) string {
	if len(steamID) <= 4 {
		return steamID
	}
	return strings.Repeat("*", len(steamID)-4) + steamID[len(steamID)-4:]
}

// FindColumnIndex finds the index of a CSV column by any of its possible names
func FindColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}
