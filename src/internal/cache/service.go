package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Service is the per-student activity history store the incremental extender
// runs against, plus supervisor session lookups for the auth middleware.
// Histories have no expiry other than explicit extension.
type Service interface {
	LoadHistory(ctx context.Context, studentID string) (*models.ActivityHistory, error)
	SaveHistory(ctx context.Context, history *models.ActivityHistory) error
	GetSupervisorSession(ctx context.Context, key string) (*models.SupervisorSession, error)
	CacheSupervisorSession(ctx context.Context, session *models.SupervisorSession) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache}
}

func (c *cacheService) historyKey(studentID string) string {
	return c.cfg.HistoryKeyPrefix + studentID
}

func (c *cacheService) LoadHistory(ctx context.Context, studentID string) (*models.ActivityHistory, error) {
	key := c.historyKey(studentID)
	logrus.WithField("key", key).Debug("Loading activity history from cache")

	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Activity history not found in cache")
			return nil, nil // Not an error, just not found
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to load activity history from cache")
		return nil, models.ErrRedisGet
	}

	var history models.ActivityHistory
	if err := json.Unmarshal([]byte(data), &history); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal activity history")
		return nil, models.ErrRedisGet
	}

	return &history, nil
}

func (c *cacheService) SaveHistory(ctx context.Context, history *models.ActivityHistory) error {
	key := c.historyKey(history.StudentID)

	data, err := json.Marshal(history)
	if err != nil {
		logrus.WithError(err).WithField("student_id", history.StudentID).Error("Failed to marshal activity history")
		return models.ErrRedisSet
	}

	// Histories persist until explicitly extended, so no TTL.
	if err := c.client.Set(ctx, key, data, 0).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to save activity history")
		return models.ErrRedisSet
	}

	logrus.WithFields(logrus.Fields{
		"student_id": history.StudentID,
		"events":     len(history.Activities),
	}).Debug("Activity history saved to cache")
	return nil
}

func (c *cacheService) GetSupervisorSession(ctx context.Context, key string) (*models.SupervisorSession, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", key).Debug("Supervisor session not found in cache")
			return nil, nil
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to get supervisor session from cache")
		return nil, models.ErrRedisGet
	}

	var session models.SupervisorSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		logrus.WithError(err).WithField("key", key).Error("Failed to unmarshal supervisor session")
		return nil, models.ErrRedisGet
	}

	return &session, nil
}

func (c *cacheService) CacheSupervisorSession(ctx context.Context, session *models.SupervisorSession) error {
	key := fmt.Sprintf("session:%s:%s", session.UserID, session.SessionID)

	data, err := json.Marshal(session)
	if err != nil {
		logrus.WithError(err).WithField("session_id", session.SessionID).Error("Failed to marshal supervisor session")
		return models.ErrRedisSet
	}

	expiration := time.Until(session.LastActiveAt.Add(time.Minute * time.Duration(c.cfg.SessionExpirationMinutes)))
	if expiration <= 0 {
		logrus.WithField("session_id", session.SessionID).Warn("Session already expired, not caching")
		return nil
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		logrus.WithError(err).WithField("session_id", session.SessionID).Error("Failed to cache supervisor session")
		return models.ErrRedisSet
	}

	return nil
}
