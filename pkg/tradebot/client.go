package tradebot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OfferState is the state of a trade offer as reported by the bot
type OfferState string

const (
	OfferStatePending  OfferState = "pending" // awaiting mobile confirmation
	OfferStateActive   OfferState = "active"
	OfferStateAccepted OfferState = "accepted"
	OfferStateDeclined OfferState = "declined"
	OfferStateCanceled OfferState = "canceled"
	OfferStateInvalid  OfferState = "invalid"
)

// IsFinal reports whether the offer can no longer change
func (s OfferState) IsFinal() bool {
	switch s {
	case OfferStateAccepted, OfferStateDeclined, OfferStateCanceled, OfferStateInvalid:
		return true
	}
	return false
}

// ErrNotFound is returned for unknown offers
var ErrNotFound = errors.New("trade offer not found")

// EscrowItem is one asset held by the escrow account
type EscrowItem struct {
	AssetID        string `json:"assetid"`
	AppID          int    `json:"appid"`
	ContextID      string `json:"contextid"`
	MarketHashName string `json:"market_hash_name"`
	Tradable       bool   `json:"tradable"`
}

// OfferItem identifies an asset added to an offer
type OfferItem struct {
	AssetID   string `json:"assetid"`
	AppID     int    `json:"appid"`
	ContextID string `json:"contextid"`
}

// Offer is an outbound trade offer being built
type Offer struct {
	Destination string      `json:"tradeUrl"`
	Message     string      `json:"message,omitempty"`
	Items       []OfferItem `json:"items"`
}

// NewOffer starts an offer to a trade URL
func NewOffer(destination string) *Offer {
	return &Offer{Destination: destination}
}

// AddItem adds an escrow asset to the offer
func (o *Offer) AddItem(assetID string, appID int, contextID string) {
	o.Items = append(o.Items, OfferItem{AssetID: assetID, AppID: appID, ContextID: contextID})
}

// SetMessage sets the note shown to the receiver
func (o *Offer) SetMessage(msg string) {
	o.Message = msg
}

// SendResult is returned once an offer was handed to Steam
type SendResult struct {
	OfferID string     `json:"offerId"`
	State   OfferState `json:"state"`
}

// Client talks to the trade bot sidecar that owns the escrow account
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client

	mu     sync.Mutex
	escrow []EscrowItem
	offers map[string]OfferState
}

// NewClient creates a new trade bot client
func NewClient(baseURL, apiKey string, mockAPI bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 15 * time.Second},
		offers:  make(map[string]OfferState),
	}
}

// SeedEscrow replaces the mock escrow listing
func (c *Client) SeedEscrow(items []EscrowItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.escrow = append([]EscrowItem(nil), items...)
}

// GetEscrowInventory lists the escrow account's assets in listing order
func (c *Client) GetEscrowInventory(ctx context.Context) ([]EscrowItem, error) {
	if c.MockAPI {
		c.mu.Lock()
		defer c.mu.Unlock()
		return append([]EscrowItem(nil), c.escrow...), nil
	}

	var items []EscrowItem
	if err := c.do(ctx, http.MethodGet, "/inventory", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch escrow inventory: %w", err)
	}
	return items, nil
}

// Send dispatches an offer
func (c *Client) Send(ctx context.Context, offer *Offer) (*SendResult, error) {
	if len(offer.Items) == 0 {
		return nil, errors.New("offer has no items")
	}
	if c.MockAPI {
		return c.mockSend(offer), nil
	}

	var result SendResult
	if err := c.do(ctx, http.MethodPost, "/offers", offer, &result); err != nil {
		return nil, fmt.Errorf("failed to send trade offer: %w", err)
	}
	return &result, nil
}

// GetOfferState returns the current state of a sent offer
func (c *Client) GetOfferState(ctx context.Context, offerID string) (OfferState, error) {
	if c.MockAPI {
		c.mu.Lock()
		defer c.mu.Unlock()
		state, ok := c.offers[offerID]
		if !ok {
			return "", ErrNotFound
		}
		return state, nil
	}

	var result SendResult
	if err := c.do(ctx, http.MethodGet, "/offers/"+offerID, nil, &result); err != nil {
		return "", err
	}
	return result.State, nil
}

// mockSend accepts every offer and removes its items from the mock escrow
func (c *Client) mockSend(offer *Offer) *SendResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	sent := make(map[string]bool, len(offer.Items))
	for _, item := range offer.Items {
		sent[item.AssetID] = true
	}
	remaining := c.escrow[:0]
	for _, item := range c.escrow {
		if !sent[item.AssetID] {
			remaining = append(remaining, item)
		}
	}
	c.escrow = remaining

	id := uuid.NewString()
	c.offers[id] = OfferStateAccepted
	return &SendResult{OfferID: id, State: OfferStateActive}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("trade bot returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
