// Package reconcile merges asynchronous marketplace events into locally
// held auction state. The transport gives no ordering guarantee, so every
// function here either accepts an event or drops it as stale; nothing is
// buffered or reordered, and the server stays authoritative — a dropped
// event self-heals on the next full fetch.
package reconcile

import (
	"sort"

	"auction-live/pkg/models"
)

// DefaultHistoryCap bounds the recent-bid buffer.
const DefaultHistoryCap = 120

// ApplyBid merges a bid event into state and reports whether it was
// accepted. An event carrying a price below the currently displayed one is
// a stale or reordered delivery and leaves state untouched.
func ApplyBid(state *models.AuctionState, ev models.BidPlaced) bool {
	floor := state.CurrentBid
	if floor == 0 {
		floor = state.StartingBid
	}
	if ev.CurrentBid < floor {
		return false
	}
	state.CurrentBid = ev.CurrentBid
	state.BidCount = ev.BidCount
	return true
}

// AppendBid inserts record into history unless it is a near-duplicate,
// keeping the buffer sorted newest-first and capped at capacity.
// Re-sorting on every insert is fine here: capacity is small and inserts
// happen at human bidding rate.
func AppendBid(history []models.BidRecord, record models.BidRecord, capacity int) []models.BidRecord {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	if IsDuplicate(history, record) {
		return history
	}
	history = append(history, record)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].BidTime.After(history[j].BidTime)
	})
	if len(history) > capacity {
		history = history[:capacity]
	}
	return history
}
