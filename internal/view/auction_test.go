package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-live/pkg/clock"
	"auction-live/pkg/models"
)

var viewNow = time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

func detailFixture() models.AuctionState {
	return models.AuctionState{
		ID:          7,
		Title:       "vintage synth",
		StartingBid: 50,
		CurrentBid:  80,
		BidCount:    2,
		Status:      models.StatusActive,
		StartTime:   viewNow.Add(-time.Hour),
		EndTime:     viewNow.Add(time.Hour),
	}
}

func TestAuctionViewFetchThenEvents(t *testing.T) {
	fc := clock.NewFake(viewNow)
	v := NewAuctionView(fc)
	require.True(t, v.ApplyFetch(detailFixture(), []models.BidRecord{
		{BidderID: 1, Amount: 80, BidTime: viewNow.Add(-time.Minute)},
	}))

	changed := v.HandleBidPlaced(models.BidPlaced{
		AuctionID:  7,
		CurrentBid: 90,
		BidCount:   3,
		PlacedBid:  models.BidRecord{BidderID: 2, Amount: 90, BidTime: viewNow},
	})
	require.True(t, changed)
	require.Equal(t, 90.0, v.State().CurrentBid)
	require.Len(t, v.History(), 2)
	require.Equal(t, int64(2), v.History()[0].BidderID)

	// Stale event: no price change, but its bid row is still new history.
	changed = v.HandleBidPlaced(models.BidPlaced{
		AuctionID:  7,
		CurrentBid: 85,
		BidCount:   4,
		PlacedBid:  models.BidRecord{BidderID: 3, Amount: 85, BidTime: viewNow.Add(-30 * time.Second)},
	})
	require.True(t, changed)
	require.Equal(t, 90.0, v.State().CurrentBid)
	require.Equal(t, 3, v.State().BidCount)
	require.Len(t, v.History(), 3)
}

func TestAuctionViewIgnoresOtherAuctions(t *testing.T) {
	v := NewAuctionView(clock.NewFake(viewNow))
	v.ApplyFetch(detailFixture(), nil)
	require.False(t, v.HandleBidPlaced(models.BidPlaced{AuctionID: 99, CurrentBid: 500, BidCount: 1}))
	require.Equal(t, 80.0, v.State().CurrentBid)
}

func TestAuctionViewLateFetchDropped(t *testing.T) {
	v := NewAuctionView(clock.NewFake(viewNow))
	v.Close()
	require.False(t, v.ApplyFetch(detailFixture(), nil))
	require.False(t, v.HandleBidPlaced(models.BidPlaced{AuctionID: 7, CurrentBid: 90}))
	require.Equal(t, models.AuctionState{}, v.State())
}

func TestAuctionViewStatusAndCountdown(t *testing.T) {
	fc := clock.NewFake(viewNow)
	v := NewAuctionView(fc)
	v.ApplyFetch(detailFixture(), nil)

	label, done := v.CountdownTick()
	require.False(t, done)
	require.Equal(t, "01:00:00", label)

	require.True(t, v.HandleStatusUpdate(models.AuctionStatusUpdated{
		AuctionID: 7,
		Status:    models.StatusPaused,
		Timestamp: viewNow,
	}))
	label, done = v.CountdownTick()
	require.False(t, done)
	require.Equal(t, "paused at 15:00:00", label)
	since, ok := v.PausedSince()
	require.True(t, ok)
	require.Equal(t, viewNow, since)

	require.True(t, v.HandleStatusUpdate(models.AuctionStatusUpdated{
		AuctionID:  7,
		Status:     models.StatusEnded,
		WinnerID:   2,
		FinalPrice: 90,
		Timestamp:  viewNow.Add(time.Minute),
	}))
	label, done = v.CountdownTick()
	require.True(t, done)
	require.Equal(t, "ended", label)
	require.Equal(t, int64(2), v.State().WinnerID)
}
