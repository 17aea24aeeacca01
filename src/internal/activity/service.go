package activity

import (
	"context"
	"time"

	"studytrack-activity-svc/src/internal/cache"
	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"
	"studytrack-activity-svc/src/internal/tracker"

	"github.com/sirupsen/logrus"
)

// Service orchestrates the session synthesis engine around the cache store:
// load-before, extend-if-stale, save-after. Past months of a cached history
// are never recomputed.
type Service interface {
	GetHistory(ctx context.Context, studentID string, progress map[string]*models.CourseProgress, now time.Time) (*models.ActivityHistory, error)
	MonthlyBreakdown(history *models.ActivityHistory) []models.MonthlyActivity
	MergeSessions(records []models.ActivityRecord) []models.MergedSession
}

type activityService struct {
	generator    *tracker.Generator
	cacheService cache.Service
	repository   Repository
	staleness    time.Duration
}

func NewActivityService(generator *tracker.Generator, cacheService cache.Service, repository Repository, cfg *config.Configuration) Service {
	staleness := time.Duration(cfg.Tracker.CacheStalenessMinutes) * time.Minute
	if staleness <= 0 {
		staleness = time.Hour
	}
	return &activityService{
		generator:    generator,
		cacheService: cacheService,
		repository:   repository,
		staleness:    staleness,
	}
}

func (s *activityService) GetHistory(ctx context.Context, studentID string, progress map[string]*models.CourseProgress, now time.Time) (*models.ActivityHistory, error) {
	cached := s.loadCached(ctx, studentID)

	if cached != nil && len(cached.Activities) > 0 {
		s.extendIfStale(ctx, cached, progress, now)
		return cached, nil
	}

	result := s.generator.Simulate(progress, 0, now)
	history := &models.ActivityHistory{
		StudentID:       studentID,
		Activities:      result.Activities,
		TotalDurationMs: result.TotalDurationMs,
		GeneratedAt:     now,
	}
	s.persist(ctx, history)

	logrus.WithFields(logrus.Fields{
		"student_id": studentID,
		"events":     len(history.Activities),
	}).Info("Activity history generated")
	return history, nil
}

// loadCached checks redis first and falls back to the durable archive,
// re-seeding the cache on a hit. Store failures degrade to regeneration.
func (s *activityService) loadCached(ctx context.Context, studentID string) *models.ActivityHistory {
	cached, err := s.cacheService.LoadHistory(ctx, studentID)
	if err != nil {
		logrus.WithError(err).WithField("student_id", studentID).Warn("Cache load failed, falling back to archive")
	}
	if cached != nil {
		return cached
	}

	archived, err := s.repository.GetByStudentID(ctx, studentID)
	if err != nil || archived == nil {
		return nil
	}
	if err := s.cacheService.SaveHistory(ctx, archived); err != nil {
		logrus.WithError(err).WithField("student_id", studentID).Warn("Failed to re-seed cache from archive")
	}
	return archived
}

// extendIfStale appends newly generated events when the cached history's last
// event is older than the staleness threshold. Only events strictly after the
// resume point are appended, and only their duration is added to the total.
func (s *activityService) extendIfStale(ctx context.Context, cached *models.ActivityHistory, progress map[string]*models.CourseProgress, now time.Time) {
	last := cached.LastTimestamp()
	if now.UnixMilli()-last <= s.staleness.Milliseconds() {
		return
	}

	result := s.generator.Simulate(progress, last+1, now)

	appended := make([]models.Event, 0)
	for _, event := range result.Activities {
		if event.Timestamp > last {
			appended = append(appended, event)
		}
	}
	// A pair split by the resume point would leave a leading logout.
	if len(appended) > 0 && appended[0].IsLogout() {
		appended = appended[1:]
	}
	if len(appended) == 0 {
		return
	}

	cached.Activities = append(cached.Activities, appended...)
	cached.TotalDurationMs += tracker.PairedDuration(appended)
	cached.GeneratedAt = now
	s.persist(ctx, cached)

	logrus.WithFields(logrus.Fields{
		"student_id": cached.StudentID,
		"appended":   len(appended),
	}).Info("Activity history extended")
}

func (s *activityService) persist(ctx context.Context, history *models.ActivityHistory) {
	if err := s.cacheService.SaveHistory(ctx, history); err != nil {
		logrus.WithError(err).WithField("student_id", history.StudentID).Warn("Failed to save history to cache")
	}
	if err := s.repository.Upsert(ctx, history); err != nil {
		logrus.WithError(err).WithField("student_id", history.StudentID).Warn("Failed to archive history")
	}
}

func (s *activityService) MonthlyBreakdown(history *models.ActivityHistory) []models.MonthlyActivity {
	if history == nil {
		return []models.MonthlyActivity{}
	}
	return tracker.MonthlyBreakdown(history.Activities, s.generator.Location())
}

func (s *activityService) MergeSessions(records []models.ActivityRecord) []models.MergedSession {
	return tracker.MergeSessions(records)
}
