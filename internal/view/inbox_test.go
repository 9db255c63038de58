package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-live/internal/conversation"
	"auction-live/pkg/models"
)

var inboxNow = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func TestInboxMergeMessage(t *testing.T) {
	v := NewInboxView(5, false, nil)
	v.Refresh([]models.ConversationThread{
		{OtherUserID: 9, LastMessage: "old", LastMessageTime: inboxNow.Add(-time.Hour)},
	}, nil)

	require.True(t, v.HandleMessage(models.MessageReceived{
		ID: 1, SenderID: 9, ReceiverID: 5,
		Content: "new offer", SentAt: inboxNow,
	}))
	b := v.Buckets()
	require.Len(t, b.Personal, 1)
	require.Equal(t, "new offer", b.Personal[0].LastMessage)
	require.Equal(t, 1, b.Personal[0].UnreadCount)
	require.Equal(t, 1, v.UnreadTotal())

	v.MarkRead(9, nil)
	require.Equal(t, 0, v.UnreadTotal())
}

func TestInboxNewThreadFromEvent(t *testing.T) {
	v := NewInboxView(5, false, nil)
	require.True(t, v.HandleMessage(models.MessageReceived{
		ID: 2, SenderID: 13, ReceiverID: 5, Content: "hello", SentAt: inboxNow,
	}))
	b := v.Buckets()
	require.Len(t, b.Personal, 1)
	require.Equal(t, int64(13), b.Personal[0].OtherUserID)
}

func TestInboxOwnMessageNoUnread(t *testing.T) {
	v := NewInboxView(5, false, nil)
	v.HandleMessage(models.MessageReceived{
		ID: 3, SenderID: 5, ReceiverID: 9, Content: "sent by me", SentAt: inboxNow,
	})
	b := v.Buckets()
	require.Len(t, b.Personal, 1)
	require.Equal(t, int64(9), b.Personal[0].OtherUserID)
	require.Equal(t, 0, v.UnreadTotal())
}

func TestInboxStaleEventKeepsNewerPreview(t *testing.T) {
	v := NewInboxView(5, false, nil)
	v.Refresh([]models.ConversationThread{
		{OtherUserID: 9, LastMessage: "fresh", LastMessageTime: inboxNow},
	}, nil)
	// Push delivery that lost the race with the refresh.
	v.HandleMessage(models.MessageReceived{
		ID: 4, SenderID: 9, ReceiverID: 5, Content: "older", SentAt: inboxNow.Add(-time.Minute),
	})
	b := v.Buckets()
	require.Equal(t, "fresh", b.Personal[0].LastMessage)
	// Still counted as unread: it was a real unseen message.
	require.Equal(t, 1, b.Personal[0].UnreadCount)
}

func TestInboxAuctionThreadsKeptApart(t *testing.T) {
	auctionID := int64(33)
	v := NewInboxView(5, false, nil)
	v.HandleMessage(models.MessageReceived{
		ID: 5, SenderID: 9, ReceiverID: 5, Content: "about the synth", AuctionID: &auctionID, SentAt: inboxNow,
	})
	v.HandleMessage(models.MessageReceived{
		ID: 6, SenderID: 9, ReceiverID: 5, Content: "general chat", SentAt: inboxNow,
	})
	b := v.Buckets()
	require.Len(t, b.Personal, 2)
}

func TestInboxDisputePartition(t *testing.T) {
	v := NewInboxView(5, false, &conversation.Partitioner{})
	v.Refresh(
		[]models.ConversationThread{
			{OtherUserID: 9, LastMessage: "during dispute", LastMessageTime: inboxNow.Add(time.Hour)},
			{OtherUserID: 12, LastMessage: "unrelated", LastMessageTime: inboxNow.Add(time.Hour)},
		},
		[]models.DisputeBoundary{{DisputeID: 1, BuyerID: 5, SellerID: 9, CreatedAt: inboxNow}},
	)
	b := v.Buckets()
	require.Len(t, b.Dispute, 1)
	require.Len(t, b.Personal, 1)
	require.Equal(t, int64(12), b.Personal[0].OtherUserID)
}

func TestInboxClosedDropsUpdates(t *testing.T) {
	v := NewInboxView(5, false, nil)
	v.Close()
	require.False(t, v.Refresh([]models.ConversationThread{{OtherUserID: 9}}, nil))
	require.False(t, v.HandleMessage(models.MessageReceived{SenderID: 9, ReceiverID: 5, SentAt: inboxNow}))
	require.Empty(t, v.Buckets().Personal)
}
