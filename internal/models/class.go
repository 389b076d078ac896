package models

import (
	"strings"
	"time"
)

// ClassRecord is one observed historic class occurrence, sourced from a
// CSV import. The optimizer treats these as read-only facts.
type ClassRecord struct {
	ID               string    `db:"id" json:"id"`
	ClassFormat      string    `db:"class_format" json:"classFormat"`
	Location         string    `db:"location" json:"location"`
	Day              string    `db:"day_of_week" json:"day"`
	Time             string    `db:"class_time" json:"time"`
	TeacherFirstName string    `db:"teacher_first_name" json:"teacherFirstName"`
	TeacherLastName  string    `db:"teacher_last_name" json:"teacherLastName"`
	Participants     float64   `db:"participants" json:"participants"`
	TotalRevenue     float64   `db:"total_revenue" json:"totalRevenue"`
	DurationHours    float64   `db:"duration_hours" json:"durationHours"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// TeacherName joins the first and last name into the roster identity.
func (r ClassRecord) TeacherName() string {
	return strings.TrimSpace(strings.TrimSpace(r.TeacherFirstName) + " " + strings.TrimSpace(r.TeacherLastName))
}

// Valid reports whether the record carries enough data to aggregate.
// Malformed rows are skipped during import and analysis, never fatal.
func (r ClassRecord) Valid() bool {
	return r.ClassFormat != "" &&
		r.Location != "" &&
		KnownDay(r.Day) &&
		len(r.Time) >= 5 &&
		r.DurationHours > 0
}

// HistoryFilter narrows historic record queries.
type HistoryFilter struct {
	Location string
	Day      string
	Format   string
	Page     int
	PageSize int
}

// Weekdays lists the seven schedulable days in display order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdaySet = func() map[string]bool {
	m := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = true
	}
	return m
}()

// KnownDay reports whether day is one of the seven canonical weekday names.
func KnownDay(day string) bool {
	return weekdaySet[day]
}

// IsWeekend reports whether the day falls on the weekend.
func IsWeekend(day string) bool {
	return day == "Saturday" || day == "Sunday"
}
