package livefeed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"auction-live/pkg/models"
)

func testEvent(group string, n int) Event {
	data, _ := json.Marshal(map[string]int{"n": n})
	return Event{
		Type:      models.EventBidPlaced,
		Group:     group,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func recv(t *testing.T, ch chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func expectNone(t *testing.T, ch chan Event) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event for group %s", ev.Group)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubMembershipIsExplicit(t *testing.T) {
	h := NewHub(0, zerolog.Nop())
	defer h.Shutdown()

	sub := h.Subscribe("c1")
	defer sub.Close()

	// Subscribed but not joined: publishes are invisible.
	h.Publish(testEvent(AuctionGroup(7), 1))
	expectNone(t, sub.Events)

	sub.Join(AuctionGroup(7))
	h.Publish(testEvent(AuctionGroup(7), 2))
	ev := recv(t, sub.Events)
	require.Equal(t, AuctionGroup(7), ev.Group)

	// Other groups stay invisible.
	h.Publish(testEvent(AuctionGroup(8), 3))
	expectNone(t, sub.Events)

	sub.Leave(AuctionGroup(7))
	h.Publish(testEvent(AuctionGroup(7), 4))
	expectNone(t, sub.Events)
}

func TestHubReplayOnJoin(t *testing.T) {
	h := NewHub(2, zerolog.Nop())
	defer h.Shutdown()

	for i := 0; i < 5; i++ {
		h.Publish(testEvent(AuctionGroup(1), i))
	}

	sub := h.Subscribe("late")
	defer sub.Close()
	sub.Join(AuctionGroup(1))

	// Only the newest replayDepth events come back.
	var got []int
	for i := 0; i < 2; i++ {
		ev := recv(t, sub.Events)
		var payload struct {
			N int `json:"n"`
		}
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		got = append(got, payload.N)
	}
	require.Equal(t, []int{3, 4}, got)
	expectNone(t, sub.Events)
}

func TestHubFanoutToMultipleMembers(t *testing.T) {
	h := NewHub(0, zerolog.Nop())
	defer h.Shutdown()

	a := h.Subscribe("a")
	b := h.Subscribe("b")
	defer a.Close()
	defer b.Close()
	a.Join(UserGroup(5))
	b.Join(UserGroup(5))

	h.Publish(testEvent(UserGroup(5), 1))
	require.Equal(t, UserGroup(5), recv(t, a.Events).Group)
	require.Equal(t, UserGroup(5), recv(t, b.Events).Group)
}

func TestHubCloseEndsStream(t *testing.T) {
	h := NewHub(0, zerolog.Nop())
	defer h.Shutdown()

	sub := h.Subscribe("c")
	sub.Join(AuctionGroup(1))
	sub.Close()

	_, ok := <-sub.Events
	require.False(t, ok)

	// Publishing after close must not panic or deliver.
	h.Publish(testEvent(AuctionGroup(1), 1))
}

func TestHubShutdownClosesSubscribers(t *testing.T) {
	h := NewHub(0, zerolog.Nop())
	sub := h.Subscribe("c")
	h.Shutdown()
	select {
	case _, ok := <-sub.Events:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed on shutdown")
	}
}
