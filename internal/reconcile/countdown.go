package reconcile

import (
	"fmt"
	"time"

	"auction-live/pkg/models"
)

// Countdown produces the remaining-time text for an auction detail view,
// recomputed on a one-second tick. Reaching zero is terminal: once the
// countdown reports done, callers stop ticking it.
type Countdown struct {
	done bool
}

// Tick returns the label for the current instant and whether the countdown
// has reached its terminal state. Paused auctions show the pause timestamp
// instead of counting down; cancelled auctions show a fixed label.
func (c *Countdown) Tick(state models.AuctionState, now time.Time) (string, bool) {
	if c.done {
		return "ended", true
	}
	switch DisplayStatusOf(StateStatusInput(state), now) {
	case DisplayPaused:
		if state.PausedAt != nil {
			return "paused at " + state.PausedAt.Format("15:04:05"), false
		}
		return "paused", false
	case DisplayCancelled:
		c.done = true
		return "cancelled", true
	case DisplayCompleted:
		c.done = true
		return "ended", true
	case DisplayScheduled:
		return "starts in " + formatRemaining(state.StartTime.Sub(now)), false
	}
	if state.EndTime.IsZero() {
		return "live", false
	}
	remaining := state.EndTime.Sub(now)
	if remaining <= 0 {
		c.done = true
		return "ended", true
	}
	return formatRemaining(remaining), false
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
