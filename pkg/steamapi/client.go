package steamapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	defaultOpenIDURL    = "https://steamcommunity.com/openid/login"
	defaultCommunityURL = "https://steamcommunity.com"
	defaultAPIURL       = "https://api.steampowered.com"
	iconBaseURL         = "https://steamcommunity-a.akamaihd.net/economy/image/"
	openIDNamespace     = "http://specs.openid.net/auth/2.0"
	openIDIdentifier    = "http://specs.openid.net/auth/2.0/identifier_select"
)

var claimedIDPattern = regexp.MustCompile(`^https?://steamcommunity\.com/openid/id/(\d{17})$`)

// ErrInvalidAssertion is returned when Steam does not confirm a login
var ErrInvalidAssertion = errors.New("steam openid assertion is not valid")

// PlayerSummary is the public profile of a Steam account
type PlayerSummary struct {
	SteamID      string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatar"`
	AvatarMedium string `json:"avatarmedium"`
	AvatarFull   string `json:"avatarfull"`
}

// InventoryGroup is every asset of one market hash name in an inventory
type InventoryGroup struct {
	MarketHashName string
	IconURL        string
	Tradable       bool
	AssetIDs       []string
}

type inventoryResponse struct {
	Assets []struct {
		AssetID    string `json:"assetid"`
		ClassID    string `json:"classid"`
		InstanceID string `json:"instanceid"`
	} `json:"assets"`
	Descriptions []struct {
		ClassID        string `json:"classid"`
		InstanceID     string `json:"instanceid"`
		MarketHashName string `json:"market_hash_name"`
		IconURL        string `json:"icon_url"`
		Tradable       int    `json:"tradable"`
	} `json:"descriptions"`
}

// Client talks to Steam OpenID, the Web API and the community inventory
type Client struct {
	APIKey       string
	OpenIDURL    string
	CommunityURL string
	APIURL       string
	MockAPI      bool
	client       *http.Client

	mu          sync.Mutex
	inventories map[string][]InventoryGroup
}

// NewClient creates a new Steam client
func NewClient(apiKey string, mockAPI bool) *Client {
	return &Client{
		APIKey:       apiKey,
		OpenIDURL:    defaultOpenIDURL,
		CommunityURL: defaultCommunityURL,
		APIURL:       defaultAPIURL,
		MockAPI:      mockAPI,
		client:       &http.Client{Timeout: 10 * time.Second},
		inventories:  make(map[string][]InventoryGroup),
	}
}

// LoginURL is where users are redirected to sign in through Steam
func (c *Client) LoginURL(returnTo, realm string) string {
	q := url.Values{}
	q.Set("openid.ns", openIDNamespace)
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.return_to", returnTo)
	q.Set("openid.realm", realm)
	q.Set("openid.identity", openIDIdentifier)
	q.Set("openid.claimed_id", openIDIdentifier)
	return c.OpenIDURL + "?" + q.Encode()
}

// VerifyAssertion asks Steam to confirm the callback parameters and
// returns the signed-in SteamID64
func (c *Client) VerifyAssertion(ctx context.Context, params url.Values) (string, error) {
	match := claimedIDPattern.FindStringSubmatch(params.Get("openid.claimed_id"))
	if match == nil || params.Get("openid.mode") != "id_res" {
		return "", ErrInvalidAssertion
	}
	steamID := match[1]
	if c.MockAPI {
		return steamID, nil
	}

	check := url.Values{}
	for k, v := range params {
		check[k] = v
	}
	check.Set("openid.mode", "check_authentication")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.OpenIDURL, strings.NewReader(check.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("steam openid request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "is_valid:true") {
		return "", ErrInvalidAssertion
	}
	return steamID, nil
}

// GetPlayerSummary fetches the public profile of a Steam account
func (c *Client) GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error) {
	if c.MockAPI {
		return &PlayerSummary{
			SteamID:     steamID,
			PersonaName: "player_" + steamID[len(steamID)-4:],
			ProfileURL:  c.CommunityURL + "/profiles/" + steamID,
		}, nil
	}

	q := url.Values{}
	q.Set("key", c.APIKey)
	q.Set("steamids", steamID)
	var out struct {
		Response struct {
			Players []PlayerSummary `json:"players"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, c.APIURL+"/ISteamUser/GetPlayerSummaries/v0002/?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if len(out.Response.Players) == 0 {
		return nil, fmt.Errorf("steam profile %s not found", steamID)
	}
	return &out.Response.Players[0], nil
}

// SeedInventory sets the mock inventory of a Steam account
func (c *Client) SeedInventory(steamID string, groups []InventoryGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inventories[steamID] = groups
}

// FetchInventory reads a public inventory and groups its assets by market
// hash name, in order of first appearance
func (c *Client) FetchInventory(ctx context.Context, steamID string, appID int, contextID string) ([]InventoryGroup, error) {
	if steamID == "" {
		return nil, errors.New("steam id is required")
	}
	if c.MockAPI {
		c.mu.Lock()
		defer c.mu.Unlock()
		return append([]InventoryGroup(nil), c.inventories[steamID]...), nil
	}

	var inv inventoryResponse
	endpoint := fmt.Sprintf("%s/inventory/%s/%d/%s", c.CommunityURL, url.PathEscape(steamID), appID, url.PathEscape(contextID))
	if err := c.getJSON(ctx, endpoint, &inv); err != nil {
		return nil, err
	}
	return groupInventory(inv), nil
}

func groupInventory(inv inventoryResponse) []InventoryGroup {
	type classKey struct{ class, instance string }
	descriptions := make(map[classKey]int, len(inv.Descriptions))
	for i, d := range inv.Descriptions {
		descriptions[classKey{d.ClassID, d.InstanceID}] = i
	}

	var groups []InventoryGroup
	byName := make(map[string]int)
	for _, asset := range inv.Assets {
		i, ok := descriptions[classKey{asset.ClassID, asset.InstanceID}]
		if !ok {
			continue
		}
		d := inv.Descriptions[i]
		g, seen := byName[d.MarketHashName]
		if !seen {
			g = len(groups)
			byName[d.MarketHashName] = g
			groups = append(groups, InventoryGroup{
				MarketHashName: d.MarketHashName,
				IconURL:        iconBaseURL + d.IconURL,
				Tradable:       d.Tradable == 1,
			})
		}
		groups[g].AssetIDs = append(groups[g].AssetIDs, asset.AssetID)
	}
	return groups
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("steam request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steam request returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode steam response: %w", err)
	}
	return nil
}
