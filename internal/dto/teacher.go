package dto

// CreateTeacherRequest adds a roster entry.
type CreateTeacherRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName"`
	Email        string `json:"email" validate:"omitempty,email"`
	IsJunior     bool   `json:"isJunior"`
	Active       bool   `json:"active"`
	BlackoutDays string `json:"blackoutDays"`
}

// UpdateTeacherRequest rewrites a roster entry.
type UpdateTeacherRequest struct {
	FirstName    string `json:"firstName" validate:"required"`
	LastName     string `json:"lastName"`
	Email        string `json:"email" validate:"omitempty,email"`
	IsJunior     bool   `json:"isJunior"`
	Active       bool   `json:"active"`
	BlackoutDays string `json:"blackoutDays"`
}
