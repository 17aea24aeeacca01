package cache

import (
	"context"
	"testing"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Configuration{
		Cache: config.CacheConfig{
			HistoryKeyPrefix:         "activity:history:",
			SessionExpirationMinutes: 30,
		},
	}

	return NewCacheService(client, cfg), mr
}

func TestLoadHistory_MissReturnsNil(t *testing.T) {
	service, _ := setupTestService(t)

	history, err := service.LoadHistory(context.Background(), "student-1")

	require.NoError(t, err)
	assert.Nil(t, history)
}

func TestSaveAndLoadHistory(t *testing.T) {
	service, mr := setupTestService(t)
	ctx := context.Background()

	history := &models.ActivityHistory{
		StudentID: "student-1",
		Activities: []models.Event{
			{Event: models.EventLogin, Timestamp: 1700000000000},
			{Event: models.EventLogout, Timestamp: 1700003600000},
		},
		TotalDurationMs: 3600000,
		GeneratedAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, service.SaveHistory(ctx, history))
	assert.True(t, mr.Exists("activity:history:student-1"))

	loaded, err := service.LoadHistory(ctx, "student-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, history.StudentID, loaded.StudentID)
	assert.Equal(t, history.Activities, loaded.Activities)
	assert.Equal(t, history.TotalDurationMs, loaded.TotalDurationMs)
}

func TestSaveHistory_NoExpiry(t *testing.T) {
	service, mr := setupTestService(t)

	history := &models.ActivityHistory{StudentID: "student-1", Activities: []models.Event{}}
	require.NoError(t, service.SaveHistory(context.Background(), history))

	assert.Equal(t, time.Duration(0), mr.TTL("activity:history:student-1"))
}

func TestLoadHistory_CorruptPayload(t *testing.T) {
	service, mr := setupTestService(t)
	require.NoError(t, mr.Set("activity:history:student-1", "not-json"))

	_, err := service.LoadHistory(context.Background(), "student-1")

	assert.ErrorIs(t, err, models.ErrRedisGet)
}

func TestSupervisorSessionRoundtrip(t *testing.T) {
	service, mr := setupTestService(t)
	ctx := context.Background()

	session := &models.SupervisorSession{
		SessionID:    "sess-1",
		UserID:       "user-1",
		Email:        "supervisor@example.com",
		IsActive:     true,
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
		CreatedAt:    time.Now().UTC(),
		LastActiveAt: time.Now().UTC(),
	}

	require.NoError(t, service.CacheSupervisorSession(ctx, session))

	key := "session:user-1:sess-1"
	assert.True(t, mr.Exists(key))
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	loaded, err := service.GetSupervisorSession(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.SessionID, loaded.SessionID)
	assert.Equal(t, session.Email, loaded.Email)
	assert.True(t, loaded.IsActive)
}

func TestCacheSupervisorSession_ExpiredNotStored(t *testing.T) {
	service, mr := setupTestService(t)

	session := &models.SupervisorSession{
		SessionID:    "sess-1",
		UserID:       "user-1",
		LastActiveAt: time.Now().Add(-2 * time.Hour),
	}

	require.NoError(t, service.CacheSupervisorSession(context.Background(), session))
	assert.False(t, mr.Exists("session:user-1:sess-1"))
}

func TestGetSupervisorSession_Miss(t *testing.T) {
	service, _ := setupTestService(t)

	session, err := service.GetSupervisorSession(context.Background(), "session:none:none")

	require.NoError(t, err)
	assert.Nil(t, session)
}
