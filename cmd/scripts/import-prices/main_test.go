package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrices(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	input := `Market_Hash_Name,Price
AK | Rust,1.234
Hoodie,$12
,3.00
Boots,abc
Cap,-1
Hoodie,15.5
`
	prices, skipped, err := parsePrices(strings.NewReader(input), now)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, prices, 2)
	assert.Equal(t, "AK | Rust", prices[0].Name)
	assert.InDelta(t, 1.23, prices[0].Price, 1e-9)
	assert.Equal(t, "Hoodie", prices[1].Name)
	assert.InDelta(t, 15.5, prices[1].Price, 1e-9)
	assert.Equal(t, now, prices[1].UpdatedAt)
}

func TestParsePrices_MissingColumns(t *testing.T) {
	_, _, err := parsePrices(strings.NewReader("name,date\nx,2024-01-01\n"), time.Now())
	assert.Error(t, err)

	_, _, err = parsePrices(strings.NewReader(""), time.Now())
	assert.Error(t, err)
}
