package tracker

import (
	"math"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

const (
	msInMinute = int64(60 * 1000)
	msInHour   = int64(60 * 60 * 1000)
)

// Result is the generator output: a paired event sequence plus its total
// logged-in duration.
type Result struct {
	Activities      []models.Event
	TotalDurationMs int64
}

// Generator fabricates a plausible login/logout history from a student's
// enrollment and lecture-completion records. Every session it invents covers
// the real milestones (enrollments, completions), adds Thursday-to-Saturday
// evening habit sessions and background random sessions, and the result is
// corrected so each month's total lands inside the configured quota band.
type Generator struct {
	rand            Source
	loc             *time.Location
	holidays        map[string]struct{}
	minMonthlyHours float64
	maxMonthlyHours float64
}

func NewGenerator(cfg *config.TrackerConfig, src Source) (*Generator, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, day := range cfg.Holidays {
		holidays[day] = struct{}{}
	}

	minHours := cfg.MinMonthlyHours
	maxHours := cfg.MaxMonthlyHours
	if minHours <= 0 {
		minHours = 75
	}
	if maxHours <= minHours {
		maxHours = 95
	}

	return &Generator{
		rand:            src,
		loc:             loc,
		holidays:        holidays,
		minMonthlyHours: minHours,
		maxMonthlyHours: maxHours,
	}, nil
}

// Location returns the operating timezone all calendar arithmetic uses.
func (g *Generator) Location() *time.Location {
	return g.loc
}

// Simulate builds the full history for one student. resumeFrom, when
// positive, moves the background-session cursor forward so a cached history
// can be extended without recomputing the past; now is supplied by the caller
// to keep the generator testable.
func (g *Generator) Simulate(progress map[string]*models.CourseProgress, resumeFrom int64, now time.Time) Result {
	nowMs := now.UnixMilli()
	earliestEnrolled := int64(math.MaxInt64)
	latestCompleted := int64(0)
	hasCompletion := false

	events := make([]models.Event, 0)
	type span struct{ login, logout int64 }
	completionSpans := make([]span, 0)

	for _, course := range progress {
		if course == nil || course.EnrolledAt.IsZero() {
			continue
		}
		enrolled := course.EnrolledAt.UnixMilli()
		if enrolled < earliestEnrolled {
			earliestEnrolled = enrolled
		}

		// Session bracketing the enrollment instant.
		start := enrolled - int64(g.rand.Intn(31))*msInMinute
		end := enrolled + int64(g.rand.Intn(30))*msInMinute
		if end > nowMs {
			end = nowMs
		}
		if start < end && start < nowMs {
			events = appendEvent(events, models.EventLogin, start)
			events = appendEvent(events, models.EventLogout, end)
		}

		// Sessions bracketing each lecture completion. Future-dated
		// completions contribute no events.
		for _, completed := range course.CompletionTimes() {
			completedMs := completed.UnixMilli()
			if completedMs > latestCompleted {
				latestCompleted = completedMs
			}
			hasCompletion = true
			if completedMs > nowMs {
				continue
			}

			login := completedMs - int64(10+g.rand.Intn(21))*msInMinute
			logout := completedMs + int64(5+g.rand.Intn(16))*msInMinute
			if logout > nowMs {
				logout = nowMs
			}
			covered := false
			for _, s := range completionSpans {
				if s.login <= completedMs && s.logout >= completedMs {
					covered = true
					break
				}
			}
			if !covered {
				completionSpans = append(completionSpans, span{login: login, logout: logout})
			}
		}
	}

	for _, s := range completionSpans {
		events = appendEvent(events, models.EventLogin, s.login)
		events = appendEvent(events, models.EventLogout, s.logout)
	}

	if earliestEnrolled == math.MaxInt64 {
		return Result{Activities: []models.Event{}}
	}

	endTime := g.historyEnd(earliestEnrolled, latestCompleted, hasCompletion, nowMs)

	events = g.addHabitSessions(events, earliestEnrolled, endTime)
	events = g.addBackgroundSessions(events, earliestEnrolled, resumeFrom, endTime)

	paired := PairEvents(events)
	paired = g.ensureCoverage(paired, progress, nowMs)
	final := g.enforceMonthlyQuota(paired, earliestEnrolled, now)

	result := Result{Activities: final, TotalDurationMs: PairedDuration(final)}
	logrus.WithFields(logrus.Fields{
		"events":            len(result.Activities),
		"total_duration_ms": result.TotalDurationMs,
	}).Debug("Activity history simulated")
	return result
}

// historyEnd decides where the fabricated history stops: "now" when the
// earliest enrollment is recent (within two months) or nothing was completed,
// otherwise one or two days past the latest completion, capped at "now".
func (g *Generator) historyEnd(earliestEnrolled, latestCompleted int64, hasCompletion bool, nowMs int64) int64 {
	recent := time.UnixMilli(earliestEnrolled).In(g.loc).AddDate(0, 2, 0).UnixMilli() >= nowMs
	if recent || !hasCompletion {
		return nowMs
	}
	days := 1 + g.rand.Intn(2)
	end := time.UnixMilli(latestCompleted).In(g.loc).AddDate(0, 0, days).UnixMilli()
	if end > nowMs {
		end = nowMs
	}
	return end
}

// addHabitSessions emits one evening session for every Thursday, Friday and
// Saturday between enrollment and the end of history: login in the
// 16:30-18:59 band, logout in the 20:05-20:50 band.
func (g *Generator) addHabitSessions(events []models.Event, earliestEnrolled, endTime int64) []models.Event {
	day := startOfDay(time.UnixMilli(earliestEnrolled).In(g.loc))
	endDay := startOfDay(time.UnixMilli(endTime).In(g.loc))

	for !day.After(endDay) {
		switch day.Weekday() {
		case time.Thursday, time.Friday, time.Saturday:
			hour := 16 + g.rand.Intn(3)
			minute := g.rand.Intn(60)
			if hour == 16 {
				minute = 30 + g.rand.Intn(30)
			}
			login := g.at(day, hour, minute).UnixMilli()
			logout := g.at(day, 20, 5+g.rand.Intn(46)).UnixMilli()

			if login < logout && login >= earliestEnrolled && logout <= endTime {
				events = appendEvent(events, models.EventLogin, login)
				events = appendEvent(events, models.EventLogout, logout)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return events
}

// addBackgroundSessions walks a cursor from resumeFrom (or the earliest
// enrollment) to the end of history, emitting randomized sessions: 80/20
// weekday bias, holidays skipped, login hours weighted to the working day,
// 95/5 short/long durations, and a 95/5 inter-session gap draw.
func (g *Generator) addBackgroundSessions(events []models.Event, earliestEnrolled, resumeFrom, endTime int64) []models.Event {
	cursor := earliestEnrolled
	if resumeFrom > 0 {
		cursor = resumeFrom
	}

	for cursor < endTime {
		day := g.pickDay(cursor)
		login := g.pickLoginTime(day)
		loginMs := login.UnixMilli()
		if loginMs > endTime {
			break
		}

		logoutMs := g.pickLogout(login, g.pickDurationMs(), endTime)

		last := lastEvent(events)
		if !hasEvent(events, models.EventLogin, loginMs) && (last == nil || !last.IsLogin()) {
			events = append(events, models.Event{Event: models.EventLogin, Timestamp: loginMs})
			if logoutMs > loginMs && !hasEvent(events, models.EventLogout, logoutMs) {
				events = append(events, models.Event{Event: models.EventLogout, Timestamp: logoutMs})
			}
		}

		cursor = logoutMs + g.pickGapMs()
	}
	return events
}

// pickDay chooses a day near the cursor, 80% weekdays / 20% weekends,
// retrying holidays up to ten times before accepting one anyway.
func (g *Generator) pickDay(cursorMs int64) time.Time {
	base := startOfDay(time.UnixMilli(cursorMs).In(g.loc))
	weekStart := base.AddDate(0, 0, -int(base.Weekday()))

	day := base
	for tries := 0; tries < 10; tries++ {
		var offset int
		if g.rand.Float64() < 0.8 {
			offset = 1 + g.rand.Intn(5) // Mon-Fri
		} else if g.rand.Intn(2) == 0 {
			offset = 0 // Sunday
		} else {
			offset = 6 // Saturday
		}
		day = weekStart.AddDate(0, 0, offset+g.rand.Intn(7))
		if !g.isHoliday(day) {
			break
		}
	}
	return day
}

// pickLoginTime draws a login hour weighted 70% toward 8:00-18:00.
func (g *Generator) pickLoginTime(day time.Time) time.Time {
	var hour int
	if g.rand.Float64() < 0.7 {
		hour = 8 + g.rand.Intn(10)
	} else {
		hour = 18 + g.rand.Intn(6)
	}
	return g.at(day, hour, g.rand.Intn(60))
}

// pickDurationMs draws a session length: 95% from 1-5 hours, 5% from the
// 5-8 hour long-session range.
func (g *Generator) pickDurationMs() int64 {
	var hours float64
	if g.rand.Float64() < 0.95 {
		hours = 1 + g.rand.Float64()*4
	} else {
		hours = 5 + g.rand.Float64()*3
	}
	return int64(hours * float64(msInHour))
}

// pickLogout clamps the logout: 98% of sessions running past 21:00 are
// pulled back into the 20:30-20:59 band, and nothing runs past the login
// day's 23:59 or the end of history.
func (g *Generator) pickLogout(login time.Time, durationMs, endTime int64) int64 {
	candidate := login.Add(time.Duration(durationMs) * time.Millisecond).In(g.loc)
	if candidate.Hour() >= 21 && g.rand.Float64() > 0.02 {
		candidate = g.at(startOfDay(candidate), 20, 30+g.rand.Intn(30))
	}

	logout := candidate.UnixMilli()
	if dayEnd := g.at(startOfDay(login.In(g.loc)), 23, 59).UnixMilli(); logout > dayEnd {
		logout = dayEnd
	}
	if logout > endTime {
		logout = endTime
	}
	return logout
}

// pickGapMs draws the idle gap to the next session: 95% from 1-5 hours,
// 5% from 5-12 hours.
func (g *Generator) pickGapMs() int64 {
	var hours float64
	if g.rand.Float64() < 0.95 {
		hours = 1 + g.rand.Float64()*4
	} else {
		hours = 5 + g.rand.Float64()*7
	}
	return int64(hours * float64(msInHour))
}

// ensureCoverage re-checks every milestone (enrollment, lecture completion)
// against the paired sequence and inserts a bracketing session for any
// instant pairing left uncovered, then re-pairs. Future milestones are
// skipped and inserted brackets never run past "now".
func (g *Generator) ensureCoverage(paired []models.Event, progress map[string]*models.CourseProgress, nowMs int64) []models.Event {
	inserted := false
	cover := func(ts int64) {
		if ts > nowMs || coversInstant(paired, ts) {
			return
		}
		login := ts - int64(10+g.rand.Intn(21))*msInMinute
		logout := ts + int64(5+g.rand.Intn(16))*msInMinute
		if logout > nowMs {
			logout = nowMs
		}
		paired = append(paired,
			models.Event{Event: models.EventLogin, Timestamp: login},
			models.Event{Event: models.EventLogout, Timestamp: logout},
		)
		inserted = true
	}

	for _, course := range progress {
		if course == nil {
			continue
		}
		if !course.EnrolledAt.IsZero() {
			cover(course.EnrolledAt.UnixMilli())
		}
		for _, completed := range course.CompletionTimes() {
			cover(completed.UnixMilli())
		}
	}
	if !inserted {
		return paired
	}
	return PairEvents(paired)
}

func (g *Generator) isHoliday(day time.Time) bool {
	_, ok := g.holidays[day.In(g.loc).Format("01-02")]
	return ok
}

// at rebuilds an instant on day's date at the given local wall-clock time.
func (g *Generator) at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, g.loc)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// coversInstant reports whether any pair in the sequence contains ts.
func coversInstant(paired []models.Event, ts int64) bool {
	for i := 0; i+1 < len(paired); i += 2 {
		if paired[i].IsLogin() && paired[i+1].IsLogout() &&
			paired[i].Timestamp <= ts && paired[i+1].Timestamp >= ts {
			return true
		}
	}
	return false
}

func appendEvent(events []models.Event, kind string, ts int64) []models.Event {
	if hasEvent(events, kind, ts) {
		return events
	}
	return append(events, models.Event{Event: kind, Timestamp: ts})
}

func hasEvent(events []models.Event, kind string, ts int64) bool {
	for _, event := range events {
		if event.Event == kind && event.Timestamp == ts {
			return true
		}
	}
	return false
}

func lastEvent(events []models.Event) *models.Event {
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}
