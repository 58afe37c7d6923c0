// Command import-prices loads market prices from a CSV export into MongoDB.
//
// Usage: import-prices prices.csv
//
// The file needs a header row with a name column (name, market_hash_name)
// and a price column (price, value). Rows with an empty name or an
// unparseable price are skipped.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/config"
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	mongorepo "github.com/ArowuTest/skinjackpot-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/skinjackpot-backend/internal/utils"
	"github.com/ArowuTest/skinjackpot-backend/pkg/mongodb"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"
)

var (
	nameColumns  = []string{"name", "market_hash_name", "item"}
	priceColumns = []string{"price", "value", "usd"}
)

func main() {
	if len(os.Args) < 2 {
		slog.Error("CSV file path is required as a command line argument")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error("Failed to open CSV file", "error", err)
		os.Exit(1)
	}
	defer file.Close()

	prices, skipped, err := parsePrices(file, time.Now().UTC())
	if err != nil {
		slog.Error("Failed to parse CSV file", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	upserted, err := mongorepo.NewMarketPriceRepository(client.Database()).UpsertMany(ctx, prices)
	if err != nil {
		slog.Error("Failed to import prices", "error", err)
		os.Exit(1)
	}
	slog.Info("Prices imported", "rows", len(prices), "upserted", upserted, "skipped", skipped)
}

// parsePrices reads name/price rows; the last row wins for duplicate names
func parsePrices(r io.Reader, now time.Time) ([]models.MarketPrice, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	nameIdx := utils.FindColumnIndex(header, nameColumns)
	priceIdx := utils.FindColumnIndex(header, priceColumns)
	if nameIdx < 0 || priceIdx < 0 {
		return nil, 0, fmt.Errorf("header must contain a name and a price column, got %v", header)
	}

	byName := make(map[string]int)
	var prices []models.MarketPrice
	skipped := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if nameIdx >= len(record) || priceIdx >= len(record) {
			skipped++
			continue
		}
		name := strings.TrimSpace(record[nameIdx])
		price, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(record[priceIdx]), "$"))
		if name == "" || err != nil || price.IsNegative() {
			slog.Warn("Skipping price row", "line", line, "name", name)
			skipped++
			continue
		}
		mp := models.MarketPrice{Name: name, Price: price.Round(2).InexactFloat64(), UpdatedAt: now}
		if i, ok := byName[name]; ok {
			prices[i] = mp
			continue
		}
		byName[name] = len(prices)
		prices = append(prices, mp)
	}
	return prices, skipped, nil
}
