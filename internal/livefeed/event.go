package livefeed

import (
	"encoding/json"
	"strconv"
	"time"

	"auction-live/pkg/models"
)

// Event is the envelope fanned out to push subscribers. Data carries the
// marketplace payload untouched; clients decode it by Type.
type Event struct {
	Type      models.EventType `json:"type"`
	Group     string           `json:"group"`
	Timestamp time.Time        `json:"timestamp"`
	Data      json.RawMessage  `json:"data"`
}

// Group names. Membership is explicit: a subscriber receives nothing for a
// group it has not joined, and nothing after it leaves.
func AuctionGroup(auctionID int64) string {
	return "auction:" + strconv.FormatInt(auctionID, 10)
}

func UserGroup(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
