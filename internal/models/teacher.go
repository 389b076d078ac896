package models

import (
	"strings"
	"time"
)

// Teacher is one roster entry. The roster is optional input to the
// optimizer; absent a roster, teacher identity is inferred from history.
type Teacher struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
	IsJunior  bool   `db:"is_junior" json:"isJunior"`
	Active    bool   `db:"active" json:"active"`
	// Comma-separated weekday names the teacher is unavailable on.
	BlackoutDays string    `db:"blackout_days" json:"blackoutDays,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (t Teacher) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(t.FirstName) + " " + strings.TrimSpace(t.LastName))
}

// BlackedOut reports whether the teacher is unavailable on the day.
func (t Teacher) BlackedOut(day string) bool {
	if t.BlackoutDays == "" {
		return false
	}
	for _, d := range strings.Split(t.BlackoutDays, ",") {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

// TeacherFilter narrows roster queries.
type TeacherFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
