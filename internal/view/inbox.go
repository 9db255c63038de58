package view

import (
	"sort"

	"auction-live/internal/conversation"
	"auction-live/pkg/models"
)

type threadKey struct {
	other   int64
	auction int64 // 0 for general threads
}

func keyOf(other int64, auctionID *int64) threadKey {
	k := threadKey{other: other}
	if auctionID != nil {
		k.auction = *auctionID
	}
	return k
}

// InboxView is the state behind the messaging screen: the flat thread map
// rebuilt on each conversation-list refresh, with live message events
// merged in between refreshes.
type InboxView struct {
	userID      int64
	userSupport bool
	partitioner *conversation.Partitioner
	threads     map[threadKey]models.ConversationThread
	disputes    []models.DisputeBoundary
	closed      bool
}

func NewInboxView(userID int64, userIsSupport bool, p *conversation.Partitioner) *InboxView {
	if p == nil {
		p = &conversation.Partitioner{}
	}
	return &InboxView{
		userID:      userID,
		userSupport: userIsSupport,
		partitioner: p,
		threads:     make(map[threadKey]models.ConversationThread),
	}
}

// Refresh replaces the thread list and dispute boundaries from a fetch.
// Dropped when the view has been closed.
func (v *InboxView) Refresh(threads []models.ConversationThread, disputes []models.DisputeBoundary) bool {
	if v.closed {
		return false
	}
	v.threads = make(map[threadKey]models.ConversationThread, len(threads))
	for _, t := range threads {
		v.threads[keyOf(t.OtherUserID, t.AuctionID)] = t
	}
	v.disputes = disputes
	return true
}

// HandleMessage merges a live message event into the thread it belongs to,
// creating the thread if this is the first exchange with that user.
func (v *InboxView) HandleMessage(ev models.MessageReceived) bool {
	if v.closed {
		return false
	}
	other := ev.SenderID
	if ev.SenderID == v.userID {
		other = ev.ReceiverID
	}
	k := keyOf(other, ev.AuctionID)
	t, ok := v.threads[k]
	if !ok {
		t = models.ConversationThread{OtherUserID: other, AuctionID: ev.AuctionID}
	}
	// A refresh can race the push delivery; keep the newer message.
	if !ok || !ev.SentAt.Before(t.LastMessageTime) {
		t.LastMessage = ev.Content
		t.LastMessageTime = ev.SentAt
	}
	if ev.ReceiverID == v.userID && !ev.IsRead {
		t.UnreadCount++
	}
	v.threads[k] = t
	return true
}

// MarkRead clears the unread counter for one thread.
func (v *InboxView) MarkRead(other int64, auctionID *int64) {
	k := keyOf(other, auctionID)
	if t, ok := v.threads[k]; ok {
		t.UnreadCount = 0
		v.threads[k] = t
	}
}

// Buckets partitions the current threads into the three inbox tabs, each
// sorted by most recent activity.
func (v *InboxView) Buckets() conversation.Buckets {
	flat := make([]models.ConversationThread, 0, len(v.threads))
	for _, t := range v.threads {
		flat = append(flat, t)
	}
	sort.Slice(flat, func(i, j int) bool {
		return flat[i].LastMessageTime.After(flat[j].LastMessageTime)
	})
	return v.partitioner.Partition(flat, v.disputes, v.userID, v.userSupport)
}

// UnreadTotal sums unread counts across every thread.
func (v *InboxView) UnreadTotal() int {
	n := 0
	for _, t := range v.threads {
		n += t.UnreadCount
	}
	return n
}

func (v *InboxView) Close() { v.closed = true }
