package activity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"studytrack-activity-svc/src/clients"
	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	GetStudentActivity(c *gin.Context)
	GetStudentSessions(c *gin.Context)
}

type handler struct {
	config    *config.Configuration
	service   Service
	lms       *clients.LMSClient
	publisher *clients.Publisher
}

func NewHandler(cfg *config.Configuration, service Service, lms *clients.LMSClient, publisher *clients.Publisher) Handler {
	return &handler{
		config:    cfg,
		service:   service,
		lms:       lms,
		publisher: publisher,
	}
}

// GetStudentActivity serves the synthesized login/logout history for one
// student, looked up by email.
func (h *handler) GetStudentActivity(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	email := c.Query("email")
	if email == "" {
		h.sendErrorResponse(c, http.StatusBadRequest, "Email is required", "Please provide a student email")
		return
	}

	logrus.WithField("email", email).Info("GetStudentActivity request received")

	student, err := h.lms.GetStudentByEmail(ctx, email)
	if err != nil {
		h.handleLookupError(c, email, err)
		return
	}

	progress := h.fetchProgress(ctx, student)

	history, err := h.service.GetHistory(ctx, student.ID, progress, time.Now())
	if err != nil {
		logrus.WithError(err).WithField("student_id", student.ID).Error("Failed to build activity history")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to build activity history", err.Error())
		return
	}

	supervisor := c.GetString("user_email")
	if err := h.publisher.PublishAudit(student.ID, email, models.ServiceActivityHandler, models.ActionHistoryServed, supervisor); err != nil {
		logrus.WithError(err).Warn("Audit publish failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":             student,
			"activities":       history.Activities,
			"totalDurationMs":  history.TotalDurationMs,
			"monthlyBreakdown": h.service.MonthlyBreakdown(history),
		},
		"message": "Activity history retrieved successfully",
	})
}

// GetStudentSessions serves the real-activity path: raw platform records
// merged into sessions by the 30-minute inactivity window.
func (h *handler) GetStudentSessions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.config.App.Timeout)*time.Second)
	defer cancel()

	email := c.Query("email")
	if email == "" {
		h.sendErrorResponse(c, http.StatusBadRequest, "Email is required", "Please provide a student email")
		return
	}

	logrus.WithField("email", email).Info("GetStudentSessions request received")

	student, err := h.lms.GetStudentByEmail(ctx, email)
	if err != nil {
		h.handleLookupError(c, email, err)
		return
	}

	records, err := h.lms.GetActivityRecords(ctx, student.ID)
	if err != nil {
		logrus.WithError(err).WithField("student_id", student.ID).Error("Failed to fetch activity records")
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch session data", err.Error())
		return
	}

	sessions := h.service.MergeSessions(records)
	totalMinutes := 0
	for _, session := range sessions {
		totalMinutes += session.Duration
	}

	supervisor := c.GetString("user_email")
	if err := h.publisher.PublishAudit(student.ID, email, models.ServiceSessionsHandler, models.ActionSessionsServed, supervisor); err != nil {
		logrus.WithError(err).Warn("Audit publish failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":     student,
			"sessions": sessions,
			"total":    totalMinutes,
		},
		"message": "Sessions retrieved successfully",
	})
}

// fetchProgress collects the per-course progress map the generator consumes.
// A failed course fetch means that course contributes no data.
func (h *handler) fetchProgress(ctx context.Context, student *models.Student) map[string]*models.CourseProgress {
	progress := make(map[string]*models.CourseProgress)

	courses, err := h.lms.GetStudentCourses(ctx, student.ID)
	if err != nil {
		logrus.WithError(err).WithField("student_id", student.ID).Warn("Failed to fetch courses")
		return progress
	}

	for _, course := range courses {
		courseProgress, err := h.lms.GetCourseProgress(ctx, course.CourseID, student.ID)
		if err != nil || courseProgress == nil {
			logrus.WithField("course_id", course.CourseID).Debug("No progress for course, skipping")
			continue
		}
		if courseProgress.EnrolledAt.IsZero() {
			courseProgress.EnrolledAt = course.EnrolledAt
		}
		if courseProgress.CourseName == "" {
			courseProgress.CourseName = course.CourseName
		}
		progress[course.CourseID] = courseProgress
	}
	return progress
}

func (h *handler) handleLookupError(c *gin.Context, email string, err error) {
	logrus.WithError(err).WithField("email", email).Error("Student lookup failed")

	switch {
	case errors.Is(err, models.ErrStudentNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Student not found", "No student found with that email")
	case errors.Is(err, models.ErrLMSUnauthorized):
		h.sendErrorResponse(c, http.StatusUnauthorized, "Invalid API key", "The course platform rejected the configured api key")
	default:
		h.sendErrorResponse(c, http.StatusInternalServerError, "Failed to fetch student data", err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, error, message string) {
	c.JSON(statusCode, gin.H{
		"error":   error,
		"success": false,
		"message": message,
	})
}
