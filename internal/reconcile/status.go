package reconcile

import (
	"time"

	"auction-live/pkg/models"
)

// DisplayStatus is the effective status shown to the user, derived from
// the raw persisted status plus wall-clock time.
type DisplayStatus string

const (
	DisplayActive    DisplayStatus = "active"
	DisplayScheduled DisplayStatus = "scheduled"
	DisplayCompleted DisplayStatus = "completed"
	DisplayPaused    DisplayStatus = "paused"
	DisplayCancelled DisplayStatus = "cancelled"
	DisplayUnknown   DisplayStatus = "unknown"
)

// StatusInput carries the fields DisplayStatusOf derives from.
type StatusInput struct {
	Status    models.AuctionStatus
	StartTime time.Time
	EndTime   time.Time
	Fallback  DisplayStatus
}

// DisplayStatusOf maps raw status plus timestamps to what the user should
// see at instant now. The persisted status lags reality (an auction stays
// "active" past its end time until a batch job catches up), so the time
// checks win. First match in the priority order decides.
func DisplayStatusOf(in StatusInput, now time.Time) DisplayStatus {
	switch in.Status {
	case models.StatusPaused:
		return DisplayPaused
	case models.StatusCancelled:
		return DisplayCancelled
	case models.StatusCompleted, models.StatusEnded:
		return DisplayCompleted
	case models.StatusActive:
		if in.StartTime.After(now) {
			return DisplayScheduled
		}
		if in.EndTime.IsZero() || in.EndTime.After(now) {
			return DisplayActive
		}
		return DisplayCompleted
	}

	// Missing or unrecognized status: derive what we can from the clock.
	if !in.EndTime.IsZero() && !in.EndTime.After(now) {
		return DisplayCompleted
	}
	if in.StartTime.After(now) {
		return DisplayScheduled
	}
	if in.Status != "" {
		return DisplayStatus(in.Status)
	}
	if in.Fallback != "" {
		return in.Fallback
	}
	return DisplayUnknown
}

// StateStatusInput builds a StatusInput from a held auction state.
func StateStatusInput(state models.AuctionState) StatusInput {
	return StatusInput{
		Status:    state.Status,
		StartTime: state.StartTime,
		EndTime:   state.EndTime,
	}
}

// ApplyStatus merges a status-change event into state. The server is
// authoritative for the raw status; the client never invents one.
func ApplyStatus(state *models.AuctionState, ev models.AuctionStatusUpdated) {
	state.Status = ev.Status
	if ev.Status == models.StatusPaused {
		t := ev.Timestamp
		state.PausedAt = &t
	} else {
		state.PausedAt = nil
	}
	if ev.WinnerID != 0 {
		state.WinnerID = ev.WinnerID
	}
	if ev.FinalPrice > 0 {
		state.FinalPrice = ev.FinalPrice
		if ev.FinalPrice > state.CurrentBid {
			state.CurrentBid = ev.FinalPrice
		}
	}
}
