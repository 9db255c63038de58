// Package conversation splits a user's flat thread list into the three
// inbox tabs: personal chats, support chats, and dispute chats. Disputes
// ride the same messaging channel as personal chats between the same
// buyer/seller pair, so the inbox must hide a dispute's thread from the
// general tab without erasing conversation history that predates it.
package conversation

import (
	"time"

	"auction-live/pkg/models"
)

// DefaultDisputeGrace absorbs clock skew between the service stamping
// dispute creation and the one stamping messages. The width is a tunable
// heuristic, not a documented guarantee.
const DefaultDisputeGrace = 60 * time.Second

// Directory answers support-account lookups. Injected rather than cached at
// package level so partitioning stays testable without hidden state.
type Directory interface {
	IsSupportAccount(userID int64) bool
}

// DirectoryFunc adapts a plain function to Directory.
type DirectoryFunc func(userID int64) bool

func (f DirectoryFunc) IsSupportAccount(userID int64) bool { return f(userID) }

// Buckets are the three disjoint inbox views.
type Buckets struct {
	Personal []models.ConversationThread
	Support  []models.ConversationThread
	Dispute  []models.ConversationThread
}

type Partitioner struct {
	Grace     time.Duration // zero means DefaultDisputeGrace
	Directory Directory
}

type pair struct {
	lo, hi int64
}

func pairOf(a, b int64) pair {
	if a > b {
		a, b = b, a
	}
	return pair{lo: a, hi: b}
}

// Partition classifies threads for userID. Rules, first match wins:
//
//  1. Auction-scoped threads are always personal.
//  2. If (userID, otherUserID) matches a dispute's participant pairs and
//     the thread's last message is not strictly older than the dispute
//     (minus the grace window), the dispute claims the thread.
//  3. A thread with no last-message timestamp is kept personal: better to
//     show a conversation twice than to hide a real one.
//  4. Of the remainder, support agents see everything as support; regular
//     users only the threads with a support account.
func (p *Partitioner) Partition(threads []models.ConversationThread, disputes []models.DisputeBoundary, userID int64, userIsSupport bool) Buckets {
	grace := p.Grace
	if grace == 0 {
		grace = DefaultDisputeGrace
	}

	// Earliest dispute creation per unordered participant pair. A dispute
	// pairs buyer/seller and each of them with the assigned admin.
	claimed := make(map[pair]time.Time)
	note := func(a, b int64, at time.Time) {
		if a == 0 || b == 0 || a == b {
			return
		}
		k := pairOf(a, b)
		if prev, ok := claimed[k]; !ok || at.Before(prev) {
			claimed[k] = at
		}
	}
	for _, d := range disputes {
		note(d.BuyerID, d.SellerID, d.CreatedAt)
		note(d.BuyerID, d.AdminID, d.CreatedAt)
		note(d.SellerID, d.AdminID, d.CreatedAt)
	}

	var out Buckets
	for _, t := range threads {
		if t.AuctionID != nil {
			out.Personal = append(out.Personal, t)
			continue
		}
		if t.LastMessageTime.IsZero() {
			out.Personal = append(out.Personal, t)
			continue
		}
		if createdAt, ok := claimed[pairOf(userID, t.OtherUserID)]; ok {
			if !t.LastMessageTime.Before(createdAt.Add(-grace)) {
				out.Dispute = append(out.Dispute, t)
				continue
			}
			// Legacy thread from before the dispute opened stays personal.
		}
		if userIsSupport || p.isSupportAccount(t.OtherUserID) {
			out.Support = append(out.Support, t)
			continue
		}
		out.Personal = append(out.Personal, t)
	}
	return out
}

func (p *Partitioner) isSupportAccount(userID int64) bool {
	if p.Directory == nil {
		return false
	}
	return p.Directory.IsSupportAccount(userID)
}
