package dependency

import (
	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/activity"
	"studytrack-activity-svc/src/internal/cache"
	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/settings"
	"studytrack-activity-svc/src/internal/tracker"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Router          *gin.Engine
	Config          *config.Configuration
	Mongodb         *clients.MongoDB
	Redis           *clients.RedisClient
	RabbitMQ        *clients.RabbitMQ
	CacheService    cache.Service
	LMSClient       *clients.LMSClient
	Publisher       *clients.Publisher
	ActivityService activity.Service
	ActivityHandler activity.Handler
	SettingsHandler settings.Handler
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) (*Manager, error) {
	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	lmsClient := clients.NewLMSClient(cfg)
	publisher := clients.NewPublisher(cfg, rabbitMQ.Channel)

	generator, err := tracker.NewGenerator(&cfg.Tracker, tracker.NewSource())
	if err != nil {
		return nil, err
	}

	historyRepo := activity.NewHistoryRepository(mongodb, cfg.Database.HistoryCollection)
	activityService := activity.NewActivityService(generator, cacheService, historyRepo, cfg)
	activityHandler := activity.NewHandler(cfg, activityService, lmsClient, publisher)

	settingsRepo := settings.NewSettingsRepository(mongodb, cfg.Database.SettingsCollection)
	settingsHandler := settings.NewHandler(cfg, settingsRepo, publisher)

	return &Manager{
		Router:          router,
		Config:          cfg,
		Mongodb:         mongodb,
		Redis:           redisClient,
		RabbitMQ:        rabbitMQ,
		CacheService:    cacheService,
		LMSClient:       lmsClient,
		Publisher:       publisher,
		ActivityService: activityService,
		ActivityHandler: activityHandler,
		SettingsHandler: settingsHandler,
	}, nil
}
