package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"studytrack-activity-svc/src/internal/config"
	"studytrack-activity-svc/src/internal/models"

	"github.com/sirupsen/logrus"
)

// LMSClient talks to the course platform's REST API. Every method degrades
// the way the core expects: a failed per-course call means "this course has
// no further data", never an aborted computation.
type LMSClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewLMSClient(cfg *config.Configuration) *LMSClient {
	return &LMSClient{
		baseURL: cfg.LMS.Url,
		apiKey:  cfg.LMS.ApiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.LMS.Timeout) * time.Second,
		},
	}
}

// GetStudentByEmail looks a student up by email, returning
// models.ErrStudentNotFound when the platform has no such user.
func (c *LMSClient) GetStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	params := url.Values{}
	params.Set("email", email)
	params.Set("per", "1")

	var response struct {
		Users []models.Student `json:"users"`
	}
	if err := c.get(ctx, "/users?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	if len(response.Users) == 0 {
		return nil, models.ErrStudentNotFound
	}
	return &response.Users[0], nil
}

// GetStudentCourses returns the student's enrollments.
func (c *LMSClient) GetStudentCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	var response struct {
		Courses []models.Course `json:"courses"`
	}
	if err := c.get(ctx, fmt.Sprintf("/users/%s", studentID), &response); err != nil {
		return nil, err
	}
	return response.Courses, nil
}

// GetCourseProgress returns the detailed progress record for one course, or
// nil when the platform has nothing for it.
func (c *LMSClient) GetCourseProgress(ctx context.Context, courseID, studentID string) (*models.CourseProgress, error) {
	var response struct {
		CourseProgress *models.CourseProgress `json:"course_progress"`
	}
	path := fmt.Sprintf("/courses/%s/progress?user_id=%s", courseID, url.QueryEscape(studentID))
	if err := c.get(ctx, path, &response); err != nil {
		return nil, err
	}
	return response.CourseProgress, nil
}

// GetActivityRecords assembles the raw activity feed for the real-session
// path: lecture starts, lecture completions and submission timestamps across
// every course the student is enrolled in. Per-course failures are skipped.
func (c *LMSClient) GetActivityRecords(ctx context.Context, studentID string) ([]models.ActivityRecord, error) {
	courses, err := c.GetStudentCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}

	records := make([]models.ActivityRecord, 0)
	for _, course := range courses {
		progress, err := c.GetCourseProgress(ctx, course.CourseID, studentID)
		if err != nil || progress == nil {
			logrus.WithField("course_id", course.CourseID).Debug("No progress data for course, skipping")
			continue
		}
		for _, section := range progress.LectureSections {
			for _, lecture := range section.Lectures {
				if lecture.CompletedAt != nil {
					records = append(records, models.ActivityRecord{
						Type:        models.RecordLectureComplete,
						Timestamp:   *lecture.CompletedAt,
						Course:      course.CourseName,
						LectureName: lecture.Name,
					})
				}
			}
		}
	}
	return records, nil
}

func (c *LMSClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apiKey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Error("Course platform request failed")
		return models.ErrLMSUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrStudentNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return models.ErrLMSUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("course platform returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
