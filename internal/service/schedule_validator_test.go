package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

func newValidatorFixture() *ValidatorService {
	rules := testRules()
	return NewValidatorService(rules, NewStudioAvailability(rules.Capacities()), zap.NewNop())
}

func placed(day, clock, location, format, first, last string) models.ScheduledClass {
	return models.ScheduledClass{
		ID:               first + last + day + clock,
		Day:              day,
		Time:             clock,
		Location:         location,
		ClassFormat:      format,
		TeacherFirstName: first,
		TeacherLastName:  last,
		Duration:         "1",
	}
}

func TestValidateEmptyScheduleIsClean(t *testing.T) {
	result := newValidatorFixture().Validate(nil)
	assert.True(t, result.OK())
	assert.NotNil(t, result.Conflicts)
	assert.NotNil(t, result.Suggestions)
}

func TestValidateCapacityConflictOncePerLocationDay(t *testing.T) {
	validator := newValidatorFixture()
	// Kenkere holds two studios; three simultaneous classes overflow it
	// twice over, but still yield exactly one conflict line.
	schedule := []models.ScheduledClass{
		placed("Monday", "09:00", "Kenkere House", "Barre 57", "A", "One"),
		placed("Monday", "09:15", "Kenkere House", "Mat 57", "B", "Two"),
		placed("Monday", "09:30", "Kenkere House", "Foundations", "C", "Three"),
		placed("Monday", "09:45", "Kenkere House", "Recovery", "D", "Four"),
	}

	result := validator.Validate(schedule)
	require.Len(t, result.Conflicts, 1)
	assert.Contains(t, result.Conflicts[0], "Kenkere House")
	assert.Contains(t, result.Conflicts[0], "Monday")
	assert.Contains(t, result.Conflicts[0], "4 overlapping classes")
	assert.Contains(t, result.Conflicts[0], "2 available studios")
}

func TestValidateBackToBackIsNotAConflict(t *testing.T) {
	validator := newValidatorFixture()
	schedule := []models.ScheduledClass{
		placed("Monday", "09:00", "Kenkere House", "Barre 57", "A", "One"),
		placed("Monday", "09:00", "Kenkere House", "Mat 57", "B", "Two"),
		placed("Monday", "10:00", "Kenkere House", "Foundations", "C", "Three"),
		placed("Monday", "10:00", "Kenkere House", "Recovery", "D", "Four"),
	}

	result := validator.Validate(schedule)
	assert.Empty(t, result.Conflicts)
}

func TestValidateSeparateDaysReportSeparately(t *testing.T) {
	validator := newValidatorFixture()
	overflow := func(day string) []models.ScheduledClass {
		return []models.ScheduledClass{
			placed(day, "09:00", "Kenkere House", "Barre 57", "A", "One"),
			placed(day, "09:00", "Kenkere House", "Mat 57", "B", "Two"),
			placed(day, "09:30", "Kenkere House", "Foundations", "C", "Three"),
		}
	}
	schedule := append(overflow("Monday"), overflow("Tuesday")...)

	result := validator.Validate(schedule)
	assert.Len(t, result.Conflicts, 2)
}

func TestValidateIsIdempotent(t *testing.T) {
	validator := newValidatorFixture()
	schedule := []models.ScheduledClass{
		placed("Monday", "09:00", "Kenkere House", "Barre 57", "A", "One"),
		placed("Monday", "09:15", "Kenkere House", "Mat 57", "B", "Two"),
		placed("Monday", "09:30", "Kenkere House", "Foundations", "C", "Three"),
	}

	first := validator.Validate(schedule)
	second := validator.Validate(schedule)
	assert.Equal(t, first, second)
}

func TestValidateWeeklyHourWarnings(t *testing.T) {
	validator := newValidatorFixture()
	var schedule []models.ScheduledClass
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday"}
	hours := []string{"08:00", "09:00", "10:00", "11:00"}
	for _, day := range days {
		for _, clock := range hours {
			schedule = append(schedule, placed(day, clock, "Kenkere House", "Barre 57", "Asha", "Pillai"))
		}
	}

	// 16 hours against the 15-hour senior limit.
	result := validator.Validate(schedule)
	found := false
	for _, warning := range result.HourWarnings {
		if containsAll(warning, "Asha Pillai", "16.0", "15 hour weekly") {
			found = true
		}
	}
	assert.True(t, found, "expected a weekly overload warning, got %v", result.HourWarnings)
}

func TestValidateJuniorWeeklyCap(t *testing.T) {
	validator := newValidatorFixture()
	var schedule []models.ScheduledClass
	days := []string{"Monday", "Tuesday", "Wednesday"}
	hours := []string{"08:00", "09:00", "10:00", "11:00"}
	for _, day := range days {
		for _, clock := range hours {
			schedule = append(schedule, placed(day, clock, "Kenkere House", "Barre 57", "Kabir", "Mehta"))
		}
	}

	// 12 hours is fine for a senior but over the 10-hour junior limit.
	result := validator.Validate(schedule)
	found := false
	for _, warning := range result.HourWarnings {
		if containsAll(warning, "Kabir Mehta", "10 hour weekly") {
			found = true
		}
	}
	assert.True(t, found, "expected a junior weekly overload warning, got %v", result.HourWarnings)
}

func TestValidateDailyHourWarnings(t *testing.T) {
	validator := newValidatorFixture()
	schedule := []models.ScheduledClass{
		placed("Monday", "07:00", "Kenkere House", "Barre 57", "Asha", "Pillai"),
		placed("Monday", "08:00", "Kenkere House", "Mat 57", "Asha", "Pillai"),
		placed("Monday", "09:00", "Kenkere House", "Foundations", "Asha", "Pillai"),
		placed("Monday", "10:00", "Kenkere House", "Recovery", "Asha", "Pillai"),
		placed("Monday", "11:00", "Kenkere House", "Barre 57", "Asha", "Pillai"),
	}

	result := validator.Validate(schedule)
	found := false
	for _, warning := range result.HourWarnings {
		if containsAll(warning, "Monday", "4 hour daily") {
			found = true
		}
	}
	assert.True(t, found, "expected a daily overload warning, got %v", result.HourWarnings)
}

func TestValidateTrainerShiftWarnings(t *testing.T) {
	validator := newValidatorFixture()
	schedule := []models.ScheduledClass{
		placed("Monday", "08:00", "Kenkere House", "Barre 57", "A", "One"),
		placed("Monday", "09:00", "Kenkere House", "Mat 57", "B", "Two"),
		placed("Monday", "10:00", "Kenkere House", "Foundations", "C", "Three"),
	}

	result := validator.Validate(schedule)
	require.Len(t, result.TrainerWarnings, 1)
	assert.Contains(t, result.TrainerWarnings[0], "Kenkere House")
	assert.Contains(t, result.TrainerWarnings[0], "morning")
	assert.Contains(t, result.TrainerWarnings[0], "3 trainers")
}

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}
