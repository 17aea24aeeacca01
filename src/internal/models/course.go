package models

import "time"

// Student is the course platform's user record, read-only to this service.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Course is one enrollment row from the course platform.
type Course struct {
	CourseID        string     `json:"course_id"`
	CourseName      string     `json:"course_name"`
	PercentComplete float64    `json:"percent_complete"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// CourseProgress is the detailed per-course progress record the generator
// consumes: enrollment instant plus the lecture completion timeline.
type CourseProgress struct {
	CourseID        string           `json:"course_id"`
	CourseName      string           `json:"course_name"`
	EnrolledAt      time.Time        `json:"enrolled_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	LectureSections []LectureSection `json:"lecture_sections"`
}

type LectureSection struct {
	Name     string    `json:"name"`
	Lectures []Lecture `json:"lectures"`
}

type Lecture struct {
	Name        string     `json:"name"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletionTimes collects the completion instants of all completed lectures.
// Lectures flagged completed without a timestamp are skipped.
func (p *CourseProgress) CompletionTimes() []time.Time {
	var times []time.Time
	for _, section := range p.LectureSections {
		for _, lecture := range section.Lectures {
			if lecture.IsCompleted && lecture.CompletedAt != nil {
				times = append(times, *lecture.CompletedAt)
			}
		}
	}
	return times
}
