package tracker

import (
	"math"
	"sort"
	"time"

	"studytrack-activity-svc/src/internal/models"
)

// sessionWindow is the inactivity gap that separates two sessions.
const sessionWindow = 30 * time.Minute

// MergeSessions folds raw timestamped activity records into contiguous
// sessions: a record extends the current session when it falls within the
// 30-minute window of the session's end, otherwise the session is closed and
// a new one starts. Records without a timestamp are skipped. The last session
// is always emitted, even with a single record (duration 0).
func MergeSessions(records []models.ActivityRecord) []models.MergedSession {
	valid := make([]models.ActivityRecord, 0, len(records))
	for _, record := range records {
		if !record.Timestamp.IsZero() {
			valid = append(valid, record)
		}
	}
	if len(valid) == 0 {
		return []models.MergedSession{}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Timestamp.Before(valid[j].Timestamp)
	})

	sessions := make([]models.MergedSession, 0)
	current := models.MergedSession{
		Start:         valid[0].Timestamp,
		End:           valid[0].Timestamp,
		CourseName:    valid[0].Course,
		ActivityCount: 1,
	}

	for _, record := range valid[1:] {
		if record.Timestamp.Sub(current.End) <= sessionWindow {
			current.End = record.Timestamp
			current.ActivityCount++
			continue
		}
		sessions = append(sessions, closeSession(current))
		current = models.MergedSession{
			Start:         record.Timestamp,
			End:           record.Timestamp,
			CourseName:    record.Course,
			ActivityCount: 1,
		}
	}

	return append(sessions, closeSession(current))
}

func closeSession(session models.MergedSession) models.MergedSession {
	session.Duration = int(math.Round(session.End.Sub(session.Start).Minutes()))
	return session
}
