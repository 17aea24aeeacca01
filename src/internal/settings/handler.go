package settings

import (
	"context"
	"net/http"
	"time"

	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	GetSettings(c *gin.Context)
	UpdateSettings(c *gin.Context)
}

type handler struct {
	config     *config.Configuration
	repository Repository
	publisher  *clients.Publisher
}

func NewHandler(cfg *config.Configuration, repository Repository, publisher *clients.Publisher) Handler {
	return &handler{
		config:     cfg,
		repository: repository,
		publisher:  publisher,
	}
}

func (h *handler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	settings, err := h.repository.Get(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load settings",
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

func (h *handler) UpdateSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid settings payload",
			"success": false,
			"message": err.Error(),
		})
		return
	}

	settings.UpdatedBy = c.GetString("user_email")

	if err := h.repository.Save(ctx, &settings); err != nil {
		logrus.WithError(err).Error("Failed to save settings")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"success": false,
			"message": err.Error(),
		})
		return
	}

	if err := h.publisher.PublishAudit("", settings.UpdatedBy, models.ServiceSettingsHandler, models.ActionSettingsUpdated, settings.UpdatedBy); err != nil {
		logrus.WithError(err).Warn("Audit publish failed")
	}

	logrus.WithField("updated_by", settings.UpdatedBy).Info("Settings updated")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
