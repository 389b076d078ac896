package models

import (
	"strconv"
	"strings"
	"time"
)

// ScheduledClass is one placed class instance in a candidate or saved
// weekly timetable. Duration is kept as a decimal-hours string to match
// the import format ("1", "1.5").
type ScheduledClass struct {
	ID               string  `db:"id" json:"id"`
	Day              string  `db:"day_of_week" json:"day"`
	Time             string  `db:"class_time" json:"time"`
	Location         string  `db:"location" json:"location"`
	ClassFormat      string  `db:"class_format" json:"classFormat"`
	TeacherFirstName string  `db:"teacher_first_name" json:"teacherFirstName"`
	TeacherLastName  string  `db:"teacher_last_name" json:"teacherLastName"`
	Duration         string  `db:"duration" json:"duration"`
	Participants     float64 `db:"participants" json:"expectedParticipants"`
	Revenue          float64 `db:"revenue" json:"expectedRevenue"`
	IsTopPerformer   bool    `db:"is_top_performer" json:"isTopPerformer"`
	StudioAssigned   string  `db:"studio_assigned" json:"studioAssigned,omitempty"`
}

// TeacherName joins the first and last name into the roster identity.
func (s ScheduledClass) TeacherName() string {
	return strings.TrimSpace(strings.TrimSpace(s.TeacherFirstName) + " " + strings.TrimSpace(s.TeacherLastName))
}

// DurationHours parses the decimal duration string, defaulting to one hour
// when the value is absent or malformed.
func (s ScheduledClass) DurationHours() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s.Duration), 64)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}

// SavedSchedule is a persisted, accepted weekly timetable.
type SavedSchedule struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Schedule sources.
const (
	ScheduleSourceLocal  = "local"
	ScheduleSourceRemote = "remote"
	ScheduleSourceManual = "manual"
)
