package reconcile

import (
	"time"

	"auction-live/pkg/models"
)

// DefaultDedupWindow is how far apart two timestamps of the same bid may
// drift and still be treated as one bid. The same bid can arrive once via
// the live feed and once via a fetch refresh, serialized with slightly
// different timestamps.
const DefaultDedupWindow = time.Second

// IsDuplicate reports whether candidate is already represented in buffer:
// same bidder, same amount, bid time within DefaultDedupWindow.
func IsDuplicate(buffer []models.BidRecord, candidate models.BidRecord) bool {
	return IsDuplicateWithin(buffer, candidate, DefaultDedupWindow)
}

func IsDuplicateWithin(buffer []models.BidRecord, candidate models.BidRecord, window time.Duration) bool {
	for _, r := range buffer {
		if r.BidderID != candidate.BidderID || r.Amount != candidate.Amount {
			continue
		}
		d := r.BidTime.Sub(candidate.BidTime)
		if d < 0 {
			d = -d
		}
		if d <= window {
			return true
		}
	}
	return false
}
