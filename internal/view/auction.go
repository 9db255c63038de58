// Package view holds the per-screen state containers. Each view owns its
// state exclusively: callers funnel fetch results and push events into it
// from a single goroutine (the UI loop), so there is no locking here.
package view

import (
	"time"

	"auction-live/internal/reconcile"
	"auction-live/pkg/clock"
	"auction-live/pkg/models"
)

// AuctionView is the live state behind one auction detail screen. It is
// created from a detail fetch and updated by push events; stale or
// duplicate deliveries are dropped by the reconcile rules.
type AuctionView struct {
	state     models.AuctionState
	history   []models.BidRecord
	capacity  int
	clk       clock.Clock
	countdown reconcile.Countdown
	closed    bool
}

func NewAuctionView(clk clock.Clock) *AuctionView {
	if clk == nil {
		clk = clock.Real{}
	}
	return &AuctionView{capacity: reconcile.DefaultHistoryCap, clk: clk}
}

// ApplyFetch installs the result of a detail fetch. Returns false when the
// view was closed while the fetch was in flight; the result is dropped so
// an unmounted screen never gets touched.
func (v *AuctionView) ApplyFetch(detail models.AuctionState, bids []models.BidRecord) bool {
	if v.closed {
		return false
	}
	v.state = detail
	v.history = nil
	for _, b := range bids {
		v.history = reconcile.AppendBid(v.history, b, v.capacity)
	}
	return true
}

// HandleBidPlaced merges a live bid event. Returns true when anything
// changed (price accepted or a new history row).
func (v *AuctionView) HandleBidPlaced(ev models.BidPlaced) bool {
	if v.closed || ev.AuctionID != v.state.ID {
		return false
	}
	accepted := reconcile.ApplyBid(&v.state, ev)
	before := len(v.history)
	v.history = reconcile.AppendBid(v.history, ev.PlacedBid, v.capacity)
	return accepted || len(v.history) != before
}

func (v *AuctionView) HandleStatusUpdate(ev models.AuctionStatusUpdated) bool {
	if v.closed || ev.AuctionID != v.state.ID {
		return false
	}
	reconcile.ApplyStatus(&v.state, ev)
	return true
}

// CountdownTick recomputes the remaining-time label. done reports the
// terminal state: callers stop the ticker once it is true.
func (v *AuctionView) CountdownTick() (label string, done bool) {
	return v.countdown.Tick(v.state, v.clk.Now())
}

func (v *AuctionView) DisplayStatus() reconcile.DisplayStatus {
	return reconcile.DisplayStatusOf(reconcile.StateStatusInput(v.state), v.clk.Now())
}

// State returns a copy of the held auction state.
func (v *AuctionView) State() models.AuctionState { return v.state }

// History returns the recent bids, newest first.
func (v *AuctionView) History() []models.BidRecord {
	out := make([]models.BidRecord, len(v.history))
	copy(out, v.history)
	return out
}

// Close marks the view unmounted. In-flight fetch results arriving after
// this are dropped by ApplyFetch.
func (v *AuctionView) Close() { v.closed = true }

func (v *AuctionView) Closed() bool { return v.closed }

// PausedSince returns when the auction was paused, if it is.
func (v *AuctionView) PausedSince() (time.Time, bool) {
	if v.state.PausedAt == nil {
		return time.Time{}, false
	}
	return *v.state.PausedAt, true
}
