package dto

import "github.com/tristudio/studio-scheduler-api/internal/models"

// SaveScheduleRequest persists an accepted draft as a named schedule.
type SaveScheduleRequest struct {
	Name     string                  `json:"name" validate:"required"`
	Source   string                  `json:"source" validate:"omitempty,oneof=local remote manual"`
	Schedule []models.ScheduledClass `json:"schedule" validate:"required,min=1"`
}

// UpdateClassRequest edits a single placed class by ID.
type UpdateClassRequest struct {
	Day              string  `json:"day" validate:"required"`
	Time             string  `json:"time" validate:"required"`
	Location         string  `json:"location" validate:"required"`
	ClassFormat      string  `json:"classFormat" validate:"required"`
	TeacherFirstName string  `json:"teacherFirstName" validate:"required"`
	TeacherLastName  string  `json:"teacherLastName"`
	Duration         string  `json:"duration" validate:"required"`
	Participants     float64 `json:"expectedParticipants" validate:"omitempty,gte=0"`
	Revenue          float64 `json:"expectedRevenue" validate:"omitempty,gte=0"`
	StudioAssigned   string  `json:"studioAssigned"`
}

// ImportSummary reports the outcome of a history CSV upload.
type ImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ExportRequest queues a timetable export for a saved schedule.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportJobResponse acknowledges a queued export.
type ExportJobResponse struct {
	JobID   string `json:"jobId"`
	Pending int    `json:"pending"`
}
