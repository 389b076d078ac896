package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

func kenkereClass(id, clock, studio string) models.ScheduledClass {
	return models.ScheduledClass{
		ID:             id,
		Day:            "Monday",
		Time:           clock,
		Location:       "Kenkere House",
		ClassFormat:    "Barre 57",
		Duration:       "1",
		StudioAssigned: studio,
	}
}

func TestFirstFreeStudioEmptySchedule(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)

	studio, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "09:00", 1, nil, "")
	require.True(t, ok)
	assert.Equal(t, "Main Studio", studio, "first studio in stable order wins")
}

func TestFirstFreeStudioFillsSecondRoom(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{kenkereClass("a", "09:00", "Main Studio")}

	studio, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "09:30", 1, schedule, "")
	require.True(t, ok)
	assert.Equal(t, "Secondary Studio", studio)
}

func TestFirstFreeStudioAllRoomsBusy(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{
		kenkereClass("a", "09:00", "Main Studio"),
		kenkereClass("b", "09:00", "Secondary Studio"),
	}

	_, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "09:30", 1, schedule, "")
	assert.False(t, ok)
}

func TestFirstFreeStudioBackToBackDoesNotConflict(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{
		kenkereClass("a", "09:00", "Main Studio"),
		kenkereClass("b", "09:00", "Secondary Studio"),
	}

	studio, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "10:00", 1, schedule, "")
	require.True(t, ok, "a class starting at a booking's end shares the room")
	assert.Equal(t, "Main Studio", studio)
}

func TestFirstFreeStudioBinsUnassignedBookings(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	// Neither booking names a room; they occupy the first two in order.
	schedule := []models.ScheduledClass{
		kenkereClass("a", "09:00", ""),
		kenkereClass("b", "09:15", ""),
	}

	_, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "09:30", 1, schedule, "")
	assert.False(t, ok)
}

func TestFirstFreeStudioExcludesEditedClass(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{
		kenkereClass("a", "09:00", "Main Studio"),
		kenkereClass("b", "09:00", "Secondary Studio"),
	}

	studio, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "09:00", 1, schedule, "b")
	require.True(t, ok, "the class being edited does not block itself")
	assert.Equal(t, "Secondary Studio", studio)
}

func TestFirstFreeStudioRejectsMidnightWraparound(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)

	_, ok := tracker.FirstFreeStudio("Kenkere House", "Monday", "23:30", 1, nil, "")
	assert.False(t, ok)
}

func TestNextFreeTimeProbesForward(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{
		kenkereClass("a", "09:00", "Main Studio"),
		kenkereClass("b", "09:00", "Secondary Studio"),
	}

	clock, ok := tracker.NextFreeTime("Kenkere House", "Monday", "09:00", 1, schedule)
	require.True(t, ok)
	assert.Equal(t, "10:00", clock, "first quarter-hour step clear of both bookings")
}

func TestNextFreeTimeStopsAtEveningCutoff(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	schedule := []models.ScheduledClass{
		kenkereClass("a", "20:45", "Main Studio"),
		kenkereClass("b", "20:45", "Secondary Studio"),
	}

	_, ok := tracker.NextFreeTime("Kenkere House", "Monday", "20:45", 1, schedule)
	assert.False(t, ok, "probing never crosses the late-evening cutoff")
}

func TestStudioCount(t *testing.T) {
	tracker := NewStudioAvailability(models.DefaultStudioCapacities)
	assert.Equal(t, 4, tracker.StudioCount("Kwality House, Kemps Corner"))
	assert.Equal(t, 3, tracker.StudioCount("Supreme HQ, Bandra"))
	assert.Equal(t, 2, tracker.StudioCount("Kenkere House"))
	assert.Equal(t, 0, tracker.StudioCount("Pop-up Site"))
}
