package tracker

import (
	"testing"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, seed int64, minHours, maxHours float64) *Generator {
	t.Helper()

	g, err := NewGenerator(&config.TrackerConfig{
		Timezone:        "UTC",
		MinMonthlyHours: minHours,
		MaxMonthlyHours: maxHours,
	}, NewSeededSource(seed))
	require.NoError(t, err)
	return g
}

func sessionAt(day time.Time, hours int64) []models.Event {
	start := day.UnixMilli()
	return []models.Event{login(start), logout(start + hours*msInHour)}
}

func TestWindowDuration(t *testing.T) {
	day := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	events := sessionAt(day, 2)

	start := day.Add(time.Hour).UnixMilli()
	end := day.Add(5 * time.Hour).UnixMilli()

	// Only the second hour of the session overlaps the window.
	assert.Equal(t, msInHour, windowDuration(events, start, end))
	assert.Equal(t, 2*msInHour, windowDuration(events, day.AddDate(0, 0, -1).UnixMilli(), end))
	assert.Equal(t, int64(0), windowDuration(events, end, end+msInHour))
}

func TestTrimToBudget_TruncatesCrossingSession(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	events := make([]models.Event, 0)
	for d := 0; d < 3; d++ {
		events = append(events, sessionAt(start.AddDate(0, 0, d).Add(10*time.Hour), 2)...)
	}

	budget := 3 * msInHour
	trimmed := trimToBudget(events, start.UnixMilli(), end.UnixMilli(), budget)

	require.Len(t, trimmed, 4)
	assert.Equal(t, budget, windowDuration(trimmed, start.UnixMilli(), end.UnixMilli()))
	// First session untouched, second pulled back to one hour.
	assert.Equal(t, events[1].Timestamp, trimmed[1].Timestamp)
	assert.Equal(t, trimmed[2].Timestamp+msInHour, trimmed[3].Timestamp)
}

func TestTrimToBudget_SessionsOutsideWindowPassThrough(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	before := sessionAt(start.AddDate(0, 0, -5).Add(9*time.Hour), 3)
	after := sessionAt(end.Add(9*time.Hour), 3)
	events := append(append([]models.Event{}, before...), after...)

	trimmed := trimToBudget(events, start.UnixMilli(), end.UnixMilli(), 0)

	assert.Equal(t, events, trimmed)
}

func TestEnforceMonthlyQuota_TrimsOverMax(t *testing.T) {
	g := newTestGenerator(t, 7, 2, 3)

	enrolled := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	events := make([]models.Event, 0)
	for d := 0; d < 10; d++ {
		events = append(events, sessionAt(enrolled.AddDate(0, 0, d).Add(10*time.Hour), 2)...)
	}

	final := g.enforceMonthlyQuota(events, enrolled.UnixMilli(), now)

	got := windowDuration(final, enrolled.UnixMilli(), now.UnixMilli())
	assert.Equal(t, 3*msInHour, got)
	assertPaired(t, final)

	// Budget spent inside the second session: first kept whole, second pulled
	// back, everything after it gone.
	require.Len(t, final, 4)
	assert.Equal(t, events[0], final[0])
	assert.Equal(t, events[1], final[1])
	assert.Equal(t, events[2], final[2])
	assert.Equal(t, final[2].Timestamp+msInHour, final[3].Timestamp)
}

func TestEnforceMonthlyQuota_FillsUnderMin(t *testing.T) {
	g := newTestGenerator(t, 7, 2, 10)

	enrolled := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	events := sessionAt(enrolled.AddDate(0, 0, 19).Add(10*time.Hour), 1)

	final := g.enforceMonthlyQuota(events, enrolled.UnixMilli(), now)

	got := windowDuration(final, enrolled.UnixMilli(), now.UnixMilli())
	assert.GreaterOrEqual(t, got, 2*msInHour)
	assert.LessOrEqual(t, got, 10*msInHour)
	assertPaired(t, final)
}

func TestEnforceMonthlyQuota_ClosesGapWhenCloserOverrunsWindow(t *testing.T) {
	g := newTestGenerator(t, 7, 75, 95)

	// Ten hours of elapsed window: the pro-rated minimum (~2.3h) cannot be
	// reached by a session starting at 08:00 without running past the window
	// end, so the closer has to slide back.
	enrolled := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	events := []models.Event{
		login(enrolled.Add(time.Hour).UnixMilli()),
		logout(enrolled.Add(70 * time.Minute).UnixMilli()),
	}

	final := g.enforceMonthlyQuota(events, enrolled.UnixMilli(), now)

	daysElapsed := 1
	totalDays := 32
	fraction := float64(daysElapsed) / float64(totalDays)
	minMs := int64(75 * fraction * float64(msInHour))

	got := windowDuration(final, enrolled.UnixMilli(), now.UnixMilli())
	assert.Equal(t, minMs, got)
	assertPaired(t, final)
	for _, event := range final {
		assert.LessOrEqual(t, event.Timestamp, now.UnixMilli())
	}
}

func TestEnforceMonthlyQuota_ProRatesPartialMonth(t *testing.T) {
	g := newTestGenerator(t, 7, 75, 95)

	enrolled := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	events := make([]models.Event, 0)
	for d := 0; d < 10; d++ {
		events = append(events, sessionAt(enrolled.AddDate(0, 0, d).Add(9*time.Hour), 5)...)
	}

	final := g.enforceMonthlyQuota(events, enrolled.UnixMilli(), now)

	daysElapsed := 11
	totalDays := 32
	fraction := float64(daysElapsed) / float64(totalDays)
	maxMs := int64(95 * fraction * float64(msInHour))

	got := windowDuration(final, enrolled.UnixMilli(), now.UnixMilli())
	assert.Equal(t, maxMs, got)
}

func TestEnforceMonthlyQuota_EmptyInput(t *testing.T) {
	g := newTestGenerator(t, 7, 75, 95)

	final := g.enforceMonthlyQuota(nil, time.Now().UnixMilli(), time.Now())
	assert.Empty(t, final)
}

// assertPaired checks the sequence is strictly alternating matched pairs in
// chronological order.
func assertPaired(t *testing.T, events []models.Event) {
	t.Helper()

	require.Equal(t, 0, len(events)%2)
	var prev int64
	for i := 0; i+1 < len(events); i += 2 {
		assert.True(t, events[i].IsLogin())
		assert.True(t, events[i+1].IsLogout())
		assert.Less(t, events[i].Timestamp, events[i+1].Timestamp)
		assert.GreaterOrEqual(t, events[i].Timestamp, prev)
		prev = events[i+1].Timestamp
	}
}
