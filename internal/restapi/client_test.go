package restapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auctions/7":
			w.Write([]byte(`{"id":7,"title":"vintage synth","current_bid":80,"starting_bid":50,"bid_count":2,"status":"active","start_time":"2026-04-10T14:00:00Z","end_time":"2026-04-10T16:00:00Z"}`))
		case "/auctions/7/bids":
			w.Write([]byte(`[{"bidder_id":1,"amount":80,"bid_time":"2026-04-10T14:30:00Z"}]`))
		case "/users/5/conversations":
			w.Write([]byte(`[{"other_user_id":9,"last_message":"hi","last_message_time":"2026-04-10T14:00:00Z","unread_count":1}]`))
		case "/users/5/disputes":
			w.Write([]byte(`[{"dispute_id":1,"buyer_id":5,"seller_id":9,"created_at":"2026-04-10T13:00:00Z"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	detail, err := c.AuctionDetail(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), detail.ID)
	require.Equal(t, 80.0, detail.CurrentBid)
	require.Equal(t, time.Date(2026, 4, 10, 16, 0, 0, 0, time.UTC), detail.EndTime)

	bids, err := c.RecentBids(ctx, 7)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, int64(1), bids[0].BidderID)

	threads, err := c.Conversations(ctx, 5)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Nil(t, threads[0].AuctionID)

	disputes, err := c.Disputes(ctx, 5)
	require.NoError(t, err)
	require.Len(t, disputes, 1)
	require.Equal(t, int64(9), disputes[0].SellerID)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "auction not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.AuctionDetail(context.Background(), 99)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}

func TestClientContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c := NewClient(srv.URL)
	_, err := c.AuctionDetail(ctx, 7)
	require.Error(t, err)
}
