package activity

import (
	"context"
	"testing"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"
	"studytrack-activity-svc/src/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	history *models.ActivityHistory
	saved   []*models.ActivityHistory
}

func (s *stubCache) LoadHistory(ctx context.Context, studentID string) (*models.ActivityHistory, error) {
	return s.history, nil
}

func (s *stubCache) SaveHistory(ctx context.Context, history *models.ActivityHistory) error {
	s.saved = append(s.saved, history)
	return nil
}

func (s *stubCache) GetSupervisorSession(ctx context.Context, key string) (*models.SupervisorSession, error) {
	return nil, nil
}

func (s *stubCache) CacheSupervisorSession(ctx context.Context, session *models.SupervisorSession) error {
	return nil
}

type stubRepo struct {
	stored  *models.ActivityHistory
	upserts int
}

func (s *stubRepo) GetByStudentID(ctx context.Context, studentID string) (*models.ActivityHistory, error) {
	return s.stored, nil
}

func (s *stubRepo) Upsert(ctx context.Context, history *models.ActivityHistory) error {
	s.stored = history
	s.upserts++
	return nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Tracker: config.TrackerConfig{
			Timezone:              "UTC",
			MinMonthlyHours:       75,
			MaxMonthlyHours:       95,
			CacheStalenessMinutes: 60,
		},
	}
}

func newTestService(t *testing.T, cacheStub *stubCache, repo *stubRepo) Service {
	t.Helper()

	cfg := testConfig()
	generator, err := tracker.NewGenerator(&cfg.Tracker, tracker.NewSeededSource(42))
	require.NoError(t, err)

	return NewActivityService(generator, cacheStub, repo, cfg)
}

func testProgress(enrolled time.Time) map[string]*models.CourseProgress {
	return map[string]*models.CourseProgress{
		"course-1": {
			CourseID:   "course-1",
			CourseName: "Algebra",
			EnrolledAt: enrolled,
		},
	}
}

func TestGetHistory_GeneratesOnColdStart(t *testing.T) {
	cacheStub := &stubCache{}
	repo := &stubRepo{}
	service := newTestService(t, cacheStub, repo)

	enrolled := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	history, err := service.GetHistory(context.Background(), "student-1", testProgress(enrolled), now)

	require.NoError(t, err)
	require.NotNil(t, history)
	assert.Equal(t, "student-1", history.StudentID)
	assert.NotEmpty(t, history.Activities)
	assert.Equal(t, now, history.GeneratedAt)

	require.Len(t, cacheStub.saved, 1)
	assert.Equal(t, 1, repo.upserts)
}

func TestGetHistory_FreshCacheReturnedUntouched(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	cached := &models.ActivityHistory{
		StudentID: "student-1",
		Activities: []models.Event{
			{Event: models.EventLogin, Timestamp: now.Add(-2 * time.Hour).UnixMilli()},
			{Event: models.EventLogout, Timestamp: now.Add(-30 * time.Minute).UnixMilli()},
		},
		TotalDurationMs: int64(90 * time.Minute / time.Millisecond),
	}

	cacheStub := &stubCache{history: cached}
	repo := &stubRepo{}
	service := newTestService(t, cacheStub, repo)

	enrolled := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history, err := service.GetHistory(context.Background(), "student-1", testProgress(enrolled), now)

	require.NoError(t, err)
	assert.Len(t, history.Activities, 2)
	assert.Empty(t, cacheStub.saved)
	assert.Equal(t, 0, repo.upserts)
}

func TestGetHistory_StaleCacheExtended(t *testing.T) {
	enrolled := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	last := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC).UnixMilli()

	cached := &models.ActivityHistory{
		StudentID: "student-1",
		Activities: []models.Event{
			{Event: models.EventLogin, Timestamp: last - 2*60*60*1000},
			{Event: models.EventLogout, Timestamp: last},
		},
		TotalDurationMs: 2 * 60 * 60 * 1000,
	}

	cacheStub := &stubCache{history: cached}
	repo := &stubRepo{}
	service := newTestService(t, cacheStub, repo)

	history, err := service.GetHistory(context.Background(), "student-1", testProgress(enrolled), now)

	require.NoError(t, err)
	require.Greater(t, len(history.Activities), 2)

	appended := history.Activities[2:]
	for _, event := range appended {
		assert.Greater(t, event.Timestamp, last)
	}
	assert.True(t, appended[0].IsLogin(), "extension must not start with a logout")

	expected := int64(2*60*60*1000) + tracker.PairedDuration(appended)
	assert.Equal(t, expected, history.TotalDurationMs)
	assert.Equal(t, now, history.GeneratedAt)

	require.Len(t, cacheStub.saved, 1)
	assert.Equal(t, 1, repo.upserts)
}

func TestGetHistory_ArchiveFallbackReseedsCache(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	archived := &models.ActivityHistory{
		StudentID: "student-1",
		Activities: []models.Event{
			{Event: models.EventLogin, Timestamp: now.Add(-90 * time.Minute).UnixMilli()},
			{Event: models.EventLogout, Timestamp: now.Add(-45 * time.Minute).UnixMilli()},
		},
		TotalDurationMs: int64(45 * time.Minute / time.Millisecond),
	}

	cacheStub := &stubCache{}
	repo := &stubRepo{stored: archived}
	service := newTestService(t, cacheStub, repo)

	enrolled := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history, err := service.GetHistory(context.Background(), "student-1", testProgress(enrolled), now)

	require.NoError(t, err)
	assert.Equal(t, archived.TotalDurationMs, history.TotalDurationMs)
	require.Len(t, cacheStub.saved, 1)
	assert.Equal(t, archived, cacheStub.saved[0])
}

func TestMonthlyBreakdown_NilHistory(t *testing.T) {
	service := newTestService(t, &stubCache{}, &stubRepo{})

	rows := service.MonthlyBreakdown(nil)

	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMergeSessions_Delegates(t *testing.T) {
	service := newTestService(t, &stubCache{}, &stubRepo{})

	base := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	sessions := service.MergeSessions([]models.ActivityRecord{
		{Type: models.RecordLecture, Timestamp: base, Course: "Algebra"},
		{Type: models.RecordLecture, Timestamp: base.Add(15 * time.Minute), Course: "Algebra"},
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, 15, sessions[0].Duration)
}
