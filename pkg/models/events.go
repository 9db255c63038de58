package models

import "time"

// Push event types emitted by the marketplace broker and fanned out to
// subscribed clients by the gateway.
type EventType string

const (
	EventBidPlaced       EventType = "bid_placed"
	EventAuctionStatus   EventType = "auction_status_updated"
	EventMessageReceived EventType = "message_received"
)

type BidPlaced struct {
	AuctionID  int64     `json:"auction_id"`
	CurrentBid float64   `json:"current_bid"`
	BidCount   int       `json:"bid_count"`
	PlacedBid  BidRecord `json:"placed_bid"`
}

type AuctionStatusUpdated struct {
	AuctionID  int64         `json:"auction_id"`
	Status     AuctionStatus `json:"status"`
	WinnerID   int64         `json:"winner_id,omitempty"`
	FinalPrice float64       `json:"final_price,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

type MessageReceived struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	AuctionID  *int64    `json:"auction_id,omitempty"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	IsRead     bool      `json:"is_read"`
}
