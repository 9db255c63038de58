// Package restapi is the typed client for the marketplace REST API. It
// only reads; the server stays authoritative and there are no retries —
// a failed fetch surfaces to the view layer and the next refresh heals it.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auction-live/pkg/models"
)

type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) AuctionDetail(ctx context.Context, auctionID int64) (models.AuctionState, error) {
	var out models.AuctionState
	err := c.getJSON(ctx, fmt.Sprintf("/auctions/%d", auctionID), &out)
	return out, err
}

func (c *Client) RecentBids(ctx context.Context, auctionID int64) ([]models.BidRecord, error) {
	var out []models.BidRecord
	err := c.getJSON(ctx, fmt.Sprintf("/auctions/%d/bids", auctionID), &out)
	return out, err
}

func (c *Client) Conversations(ctx context.Context, userID int64) ([]models.ConversationThread, error) {
	var out []models.ConversationThread
	err := c.getJSON(ctx, fmt.Sprintf("/users/%d/conversations", userID), &out)
	return out, err
}

func (c *Client) Disputes(ctx context.Context, userID int64) ([]models.DisputeBoundary, error) {
	var out []models.DisputeBoundary
	err := c.getJSON(ctx, fmt.Sprintf("/users/%d/disputes", userID), &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
