package dto

import "github.com/tristudio/studio-scheduler-api/internal/models"

// OptimizeOptions tunes a single optimizer run. Zero values fall back to
// the configured defaults.
type OptimizeOptions struct {
	LocationFilter       string  `json:"location" validate:"omitempty"`
	MinAverageAttendance float64 `json:"minAverageAttendance" validate:"omitempty,gte=0"`
	UseRemoteSuggestion  bool    `json:"useRemoteSuggestion"`
	Iteration            int     `json:"iteration" validate:"omitempty,gte=0"`
}

// OptimizeRequest triggers a full weekly schedule construction run.
type OptimizeRequest struct {
	Options OptimizeOptions `json:"options"`
}

// OptimizeResponse returns the draft schedule plus validator output.
// Source is "local" or "remote" depending on which constructor produced
// the draft; a remote failure silently degrades to local.
type OptimizeResponse struct {
	Source     string                  `json:"source"`
	Schedule   []models.ScheduledClass `json:"schedule"`
	Validation models.ValidationResult `json:"validation"`
}

// ValidateRequest asks for conflict detection over an arbitrary schedule,
// constructed or user-edited.
type ValidateRequest struct {
	Schedule []models.ScheduledClass `json:"schedule" validate:"required"`
}

// TopClassesQuery filters the top-performer analysis surface.
type TopClassesQuery struct {
	Location   string  `form:"location" json:"location"`
	MinAverage float64 `form:"minAverage" json:"minAverage"`
	ByTeacher  bool    `form:"byTeacher" json:"byTeacher"`
	Limit      int     `form:"limit" json:"limit"`
}
