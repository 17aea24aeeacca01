package tracker

import (
	"sort"

	"studytrack-activity-svc/src/internal/models"
)

// PairEvents reduces an arbitrary login/logout event set to a strictly
// alternating sequence of matched pairs. Events are sorted ascending, then
// scanned holding at most one pending login: extra logins before a logout are
// dropped (first login wins) and a logout closes the pending login only when
// its timestamp is strictly greater. Unmatched logouts are discarded.
//
// The function is idempotent: feeding its own output back returns the same
// sequence. Malformed input degrades to fewer pairs, never inconsistent ones.
func PairEvents(events []models.Event) []models.Event {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	paired := make([]models.Event, 0, len(sorted))
	var pending *models.Event
	for i := range sorted {
		event := sorted[i]
		switch {
		case event.IsLogin():
			if pending == nil {
				pending = &sorted[i]
			}
		case event.IsLogout():
			if pending != nil && event.Timestamp > pending.Timestamp {
				paired = append(paired, *pending, event)
				pending = nil
			}
		}
	}
	return paired
}

// PairedDuration sums logged-in time across an already paired sequence.
func PairedDuration(events []models.Event) int64 {
	var total int64
	for i := 0; i+1 < len(events); i += 2 {
		if events[i].IsLogin() && events[i+1].IsLogout() {
			total += events[i+1].Timestamp - events[i].Timestamp
		}
	}
	return total
}
