package models

import "time"

// ActivityHistory is the cache persistence format: one record per student,
// activities already sorted and in matched login/logout form.
type ActivityHistory struct {
	StudentID       string    `json:"studentId" bson:"student_id"`
	Activities      []Event   `json:"activities" bson:"activities"`
	TotalDurationMs int64     `json:"totalDurationMs" bson:"total_duration_ms"`
	GeneratedAt     time.Time `json:"generatedAt,omitempty" bson:"generated_at,omitempty"`
}

// LastTimestamp returns the timestamp of the most recent event, or 0 for an
// empty history.
func (h *ActivityHistory) LastTimestamp() int64 {
	if h == nil || len(h.Activities) == 0 {
		return 0
	}
	return h.Activities[len(h.Activities)-1].Timestamp
}

// MonthlyActivity is one row of the per-month breakdown.
type MonthlyActivity struct {
	Month    string  `json:"month"`
	Sessions int     `json:"sessions"`
	Hours    float64 `json:"hours"`
}

// ActivityRecord is a raw timestamped record from the course platform's
// activity feed (lecture starts, completions, submissions).
type ActivityRecord struct {
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Course      string    `json:"course"`
	LectureName string    `json:"lecture_name,omitempty"`
}

// Activity record type constants
const (
	RecordLecture         = "lecture"
	RecordLectureComplete = "lecture_complete"
	RecordSubmission      = "submission"
)

// MergedSession is one contiguous session produced by the time-window merger.
// Duration is whole minutes.
type MergedSession struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Duration      int       `json:"duration"`
	CourseName    string    `json:"course_name"`
	ActivityCount int       `json:"activity_count"`
}
