package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"github.com/ArowuTest/skinjackpot-backend/internal/utils"
	"github.com/ArowuTest/skinjackpot-backend/pkg/steamapi"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

var _ InventoryService = (*InventoryServiceImpl)(nil)

// InventoryProvider reads a user's Steam inventory
type InventoryProvider interface {
	FetchInventory(ctx context.Context, steamID string, appID int, contextID string) ([]steamapi.InventoryGroup, error)
}

// InventoryServiceImpl mirrors Steam inventories into stakeable items
type InventoryServiceImpl struct {
	provider  InventoryProvider
	userRepo  repositories.UserRepository
	itemRepo  repositories.ItemRepository
	priceRepo repositories.MarketPriceRepository
	appID     int
	contextID string
}

// NewInventoryService creates a new InventoryServiceImpl
func NewInventoryService(
	provider InventoryProvider,
	userRepo repositories.UserRepository,
	itemRepo repositories.ItemRepository,
	priceRepo repositories.MarketPriceRepository,
	appID int,
	contextID string,
) *InventoryServiceImpl {
	if appID == 0 {
		appID = models.DefaultAppID
	}
	if contextID == "" {
		contextID = models.DefaultContextID
	}
	return &InventoryServiceImpl{
		provider:  provider,
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		priceRepo: priceRepo,
		appID:     appID,
		contextID: contextID,
	}
}

// Sync fetches the user's Steam inventory, stores assets not seen before
// priced from the market price table, drops items that left the
// inventory and returns the items the user can stake
func (s *InventoryServiceImpl) Sync(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error) {
	user, err := NewUserService(s.userRepo).GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := s.provider.FetchInventory(ctx, user.SteamID, s.appID, s.contextID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch steam inventory: %w", err)
	}

	names := lo.Map(groups, func(g steamapi.InventoryGroup, _ int) string { return g.MarketHashName })
	prices, err := s.priceRepo.FindByNames(ctx, lo.Uniq(names))
	if err != nil {
		return nil, fmt.Errorf("failed to load market prices: %w", err)
	}

	existing, err := s.itemRepo.FindByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	known := lo.SliceToMap(existing, func(item *models.Item) (string, struct{}) {
		return item.AssetID, struct{}{}
	})

	var fresh []*models.Item
	var keep []string
	for _, g := range groups {
		price := FormatPrice(decimal.NewFromFloat(prices[g.MarketHashName]))
		for _, assetID := range g.AssetIDs {
			keep = append(keep, assetID)
			if _, ok := known[assetID]; ok {
				continue
			}
			known[assetID] = struct{}{}
			fresh = append(fresh, &models.Item{
				Name:      g.MarketHashName,
				IconURL:   g.IconURL,
				Price:     price,
				Tradable:  g.Tradable,
				Owner:     user.ID,
				AssetID:   assetID,
				AppID:     s.appID,
				ContextID: s.contextID,
			})
		}
	}

	if err := s.itemRepo.InsertMany(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to store items: %w", err)
	}
	removed, err := s.itemRepo.DeleteMissing(ctx, user.ID, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to prune items: %w", err)
	}
	slog.Info("Inventory synced", "userId", user.ID.Hex(), "steamId", utils.MaskSteamID(user.SteamID), "assets", len(keep), "added", len(fresh), "removed", removed)

	return s.Available(ctx, user.ID)
}

// Available returns the user's items that are not staked in any round
func (s *InventoryServiceImpl) Available(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error) {
	items, err := s.itemRepo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return lo.Filter(items, func(item *models.Item, _ int) bool { return item.StakedIn == nil }), nil
}
