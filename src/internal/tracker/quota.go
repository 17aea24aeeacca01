package tracker

import (
	"time"

	"studytrack-activity-svc/src/internal/models"
)

// enforceMonthlyQuota walks month windows anchored at the earliest enrollment
// and corrects each one so its total session duration lands inside the
// [min, max] hour band, pro-rated by elapsed days for the in-progress window.
// Each window gets a bounded pipeline: trim, fill, re-trim. Nothing loops.
func (g *Generator) enforceMonthlyQuota(events []models.Event, earliestEnrolled int64, now time.Time) []models.Event {
	if len(events) == 0 {
		return events
	}

	final := events
	monthStart := time.UnixMilli(earliestEnrolled).In(g.loc)

	for monthStart.Before(now) {
		monthEnd := monthStart.AddDate(0, 1, 0)
		windowEnd := monthEnd
		if now.Before(monthEnd) {
			windowEnd = now
		}

		daysElapsed := int(windowEnd.Sub(monthStart).Hours()/24) + 1
		totalDays := int(monthEnd.Sub(monthStart).Hours()/24) + 1
		fraction := float64(daysElapsed) / float64(totalDays)

		minMs := int64(g.minMonthlyHours * fraction * float64(msInHour))
		maxMs := int64(g.maxMonthlyHours * fraction * float64(msInHour))
		start, end := monthStart.UnixMilli(), windowEnd.UnixMilli()

		if windowDuration(final, start, end) > maxMs {
			final = trimToBudget(final, start, end, maxMs)
		}
		if windowDuration(final, start, end) < minMs {
			final = g.fillToMinimum(final, start, end, minMs, daysElapsed)
			if windowDuration(final, start, end) > maxMs {
				final = trimToBudget(final, start, end, maxMs)
			}
		}

		monthStart = monthEnd
	}
	return final
}

// windowDuration sums each pair's overlap with [start, end].
func windowDuration(events []models.Event, start, end int64) int64 {
	var total int64
	for i := 0; i+1 < len(events); i += 2 {
		s := max64(events[i].Timestamp, start)
		e := min64(events[i+1].Timestamp, end)
		if e > s {
			total += e - s
		}
	}
	return total
}

// trimToBudget keeps window-overlapping sessions in order until the budget is
// spent, pulling back the logout of the session that crosses it and dropping
// the remainder of the window. Sessions ending before the window (months
// already enforced) and sessions starting at or after its end carry through
// unchanged.
func trimToBudget(events []models.Event, start, end, budget int64) []models.Event {
	trimmed := make([]models.Event, 0, len(events))
	remaining := budget

	for i := 0; i+1 < len(events); i += 2 {
		login, logout := events[i].Timestamp, events[i+1].Timestamp

		if logout <= start || login >= end {
			trimmed = append(trimmed, events[i], events[i+1])
			continue
		}

		s := max64(login, start)
		e := min64(logout, end)
		if e <= s || remaining <= 0 {
			continue
		}

		span := e - s
		if span > remaining {
			span = remaining
			logout = s + span
		}
		trimmed = append(trimmed, events[i], models.Event{Event: models.EventLogout, Timestamp: logout})
		remaining -= span
	}
	return trimmed
}

// fillToMinimum synthesizes sessions across the window's elapsed days (one or
// two per day, 2-4 hours each, starting 08:00-20:00) until the shortfall is
// covered, re-pairs, then closes any remaining gap with one exact-size
// session starting at 08:00.
func (g *Generator) fillToMinimum(events []models.Event, start, end, minMs int64, daysElapsed int) []models.Event {
	needed := minMs - windowDuration(events, start, end)
	if needed <= 0 {
		return events
	}

	monthStart := time.UnixMilli(start).In(g.loc)
	extra := make([]models.Event, 0)

	for d := 0; d < daysElapsed && needed > 0; d++ {
		day := monthStart.AddDate(0, 0, d)
		sessionsToday := 1 + g.rand.Intn(2)

		for s := 0; s < sessionsToday && needed > 0; s++ {
			sessionStart := g.at(day, 8+g.rand.Intn(12), g.rand.Intn(60)).UnixMilli()
			duration := int64((2 + 2*g.rand.Float64()) * float64(msInHour))
			sessionEnd := sessionStart + duration
			if sessionEnd > end {
				continue
			}
			extra = append(extra,
				models.Event{Event: models.EventLogin, Timestamp: sessionStart},
				models.Event{Event: models.EventLogout, Timestamp: sessionEnd},
			)
			needed -= duration
		}
	}

	merged := PairEvents(append(append(make([]models.Event, 0, len(events)+len(extra)), events...), extra...))

	// Overlapping fill sessions collapse during re-pairing, so re-measure and
	// close any remaining gap exactly. A closer that would run past the
	// window is slid back so it still fits.
	if gap := minMs - windowDuration(merged, start, end); gap > 0 {
		days := daysElapsed
		if days < 1 {
			days = 1
		}
		closerStart := g.at(monthStart.AddDate(0, 0, g.rand.Intn(days)), 8, 0).UnixMilli()
		closerEnd := closerStart + gap
		if closerEnd > end {
			closerEnd = end
			closerStart = max64(closerEnd-gap, start)
		}
		merged = PairEvents(append(merged,
			models.Event{Event: models.EventLogin, Timestamp: closerStart},
			models.Event{Event: models.EventLogout, Timestamp: closerEnd},
		))
	}
	return merged
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
