package models

import "time"

// Raw auction status as persisted by the marketplace API. The stored value
// is coarse: a finished auction can stay "active" until a batch job flips
// it, so display code derives the effective status from the timestamps.
type AuctionStatus string

const (
	StatusScheduled AuctionStatus = "scheduled"
	StatusActive    AuctionStatus = "active"
	StatusPaused    AuctionStatus = "paused"
	StatusCancelled AuctionStatus = "cancelled"
	StatusEnded     AuctionStatus = "ended"
	StatusCompleted AuctionStatus = "completed"
)

// AuctionState is the client-held view of one auction, created from a
// detail fetch and mutated only by the reconcile package as events arrive.
type AuctionState struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title,omitempty"`
	CurrentBid  float64       `json:"current_bid"`
	StartingBid float64       `json:"starting_bid"`
	BidCount    int           `json:"bid_count"`
	Status      AuctionStatus `json:"status"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	PausedAt    *time.Time    `json:"paused_at,omitempty"`
	WinnerID    int64         `json:"winner_id,omitempty"`
	FinalPrice  float64       `json:"final_price,omitempty"`
}

// BidRecord is one entry of the recent-bid buffer. Immutable once created.
type BidRecord struct {
	BidderID   int64     `json:"bidder_id"`
	BidderName string    `json:"bidder_name,omitempty"`
	Amount     float64   `json:"amount"`
	BidTime    time.Time `json:"bid_time"`
}

// ConversationThread is one row of a user's inbox, keyed by
// (OtherUserID, AuctionID). A nil AuctionID means a general thread.
type ConversationThread struct {
	OtherUserID     int64     `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name,omitempty"`
	AuctionID       *int64    `json:"auction_id,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time,omitempty"`
	UnreadCount     int       `json:"unread_count"`
}

// DisputeBoundary is the slice of a dispute the inbox cares about: who is
// involved and when it opened. Fetched read-only from the dispute service.
type DisputeBoundary struct {
	DisputeID int64     `json:"dispute_id"`
	BuyerID   int64     `json:"buyer_id"`
	SellerID  int64     `json:"seller_id"`
	AdminID   int64     `json:"admin_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
