package server

import (
	"net/http"
	"time"

	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.StandardLogger()

type Server struct {
	cfg  *config.Configuration
	deps *dependency.Manager
}

// New wires the full service: database clients, message broker, and routes.
func New(cfg *config.Configuration) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	rabbitMQ, err := clients.NewRabbitMQ(&cfg.Queue)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}

	if err := rabbitMQ.SetupExchange(); err != nil {
		log.WithError(err).Fatal("Failed to declare exchange")
	}

	deps, err := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to build dependencies")
	}

	SetupRoutes(deps)

	return &Server{cfg: cfg, deps: deps}
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.deps.Router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	log.Infof("Server listening on port %s", s.cfg.Server.Port)
	return srv.ListenAndServe()
}
