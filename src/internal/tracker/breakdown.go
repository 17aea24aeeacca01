package tracker

import (
	"math"
	"time"

	"studytrack-activity-svc/src/internal/models"
)

// MonthlyBreakdown reduces a paired sequence into one row per calendar month:
// session count plus hours rounded to two decimals, bucketed by the login
// timestamp in loc.
func MonthlyBreakdown(events []models.Event, loc *time.Location) []models.MonthlyActivity {
	if loc == nil {
		loc = time.UTC
	}

	months := make(map[string]*models.MonthlyActivity)
	order := make([]string, 0)

	for i := 0; i+1 < len(events); i += 2 {
		login, logout := events[i], events[i+1]
		if !login.IsLogin() || !logout.IsLogout() {
			continue
		}
		key := login.Time().In(loc).Format("2006-01")
		row, ok := months[key]
		if !ok {
			row = &models.MonthlyActivity{Month: key}
			months[key] = row
			order = append(order, key)
		}
		row.Sessions++
		row.Hours += float64(logout.Timestamp-login.Timestamp) / float64(msInHour)
	}

	rows := make([]models.MonthlyActivity, 0, len(order))
	for _, key := range order {
		row := months[key]
		row.Hours = math.Round(row.Hours*100) / 100
		rows = append(rows, *row)
	}
	return rows
}
