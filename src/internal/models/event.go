package models

import "time"

// Event kind constants
const (
	EventLogin  = "login"
	EventLogout = "logout"
)

// Event is a single timestamped login/logout marker. Timestamps are epoch
// milliseconds, which is what the cache record and the reporting layer use.
type Event struct {
	Event     string `json:"event" bson:"event"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}

func (e Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

func (e Event) IsLogin() bool {
	return e.Event == EventLogin
}

func (e Event) IsLogout() bool {
	return e.Event == EventLogout
}
