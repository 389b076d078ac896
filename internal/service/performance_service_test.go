package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
)

func record(format, location, day, clock, first, last string, participants float64) models.ClassRecord {
	return models.ClassRecord{
		ClassFormat:      format,
		Location:         location,
		Day:              day,
		Time:             clock,
		TeacherFirstName: first,
		TeacherLastName:  last,
		Participants:     participants,
		TotalRevenue:     participants * 500,
		DurationHours:    1,
	}
}

func newPerformanceFixture() *PerformanceService {
	return NewPerformanceService(testRules(), nil, zap.NewNop())
}

func TestAggregateBucketsAndAverages(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Barre 57", "Kenkere House", "Monday", "09:00:00", "Asha", "Pillai", 12),
		record("Mat 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 6),
	}

	out := svc.Aggregate(records, AggregateOptions{})
	require.Len(t, out, 2)
	assert.Equal(t, "Barre 57", out[0].ClassFormat, "highest average first")
	assert.InEpsilon(t, 11.0, out[0].AvgParticipants, 1e-9)
	assert.Equal(t, 2, out[0].Frequency, "time with seconds normalizes into the same slot")
}

func TestAggregateSkipsInvalidRecords(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Barre 57", "Kenkere House", "Someday", "09:00", "Asha", "Pillai", 10),
		record("Barre 57", "Kenkere House", "Monday", "bad", "Asha", "Pillai", 10),
	}

	out := svc.Aggregate(records, AggregateOptions{})
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Frequency)
}

func TestTopClassesFilters(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		// Qualifies: two occurrences, average 11.
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 12),
		// Single occurrence, below the sample floor.
		record("Mat 57", "Kenkere House", "Tuesday", "09:00", "Asha", "Pillai", 20),
		// Strong numbers but hosted.
		record("Hosted Event", "Kenkere House", "Friday", "18:00", "Asha", "Pillai", 30),
		record("Hosted Event", "Kenkere House", "Friday", "18:00", "Asha", "Pillai", 30),
		// Cycle format at a non-flagship site.
		record("Power Cycle", "Kenkere House", "Wednesday", "09:00", "Asha", "Pillai", 15),
		record("Power Cycle", "Kenkere House", "Wednesday", "09:00", "Asha", "Pillai", 15),
		// Below the default attendance threshold.
		record("Recovery", "Kenkere House", "Thursday", "09:00", "Asha", "Pillai", 3),
		record("Recovery", "Kenkere House", "Thursday", "09:00", "Asha", "Pillai", 4),
	}

	top := svc.TopClasses(context.Background(), records, dto.TopClassesQuery{})
	require.Len(t, top, 1)
	assert.Equal(t, "Barre 57", top[0].ClassFormat)
}

func TestTopClassesExcludesDepartedTeachers(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Nishanth", "Raj", 20),
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Nishanth", "Raj", 20),
	}

	top := svc.TopClasses(context.Background(), records, dto.TopClassesQuery{ByTeacher: true})
	assert.Empty(t, top)
}

func TestTopClassesHonoursLimit(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Mat 57", "Kenkere House", "Tuesday", "09:00", "Asha", "Pillai", 9),
		record("Mat 57", "Kenkere House", "Tuesday", "09:00", "Asha", "Pillai", 9),
	}

	top := svc.TopClasses(context.Background(), records, dto.TopClassesQuery{Limit: 1})
	require.Len(t, top, 1)
	assert.Equal(t, "Barre 57", top[0].ClassFormat)
}

func TestBestTeacherForPrefersExactSlot(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 8),
		record("Barre 57", "Kenkere House", "Tuesday", "18:00", "Meera", "Shah", 20),
	}

	first, last, ok := svc.BestTeacherFor(records, "Barre 57", "Kenkere House", "Monday", "09:00")
	require.True(t, ok)
	assert.Equal(t, "Asha", first)
	assert.Equal(t, "Pillai", last)
}

func TestBestTeacherForFallsBackToFormatLocation(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Tuesday", "18:00", "Meera", "Shah", 20),
	}

	first, last, ok := svc.BestTeacherFor(records, "Barre 57", "Kenkere House", "Monday", "09:00")
	require.True(t, ok)
	assert.Equal(t, "Meera", first)
	assert.Equal(t, "Shah", last)
}

func TestBestTeacherForSkipsExcluded(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Nishanth", "Raj", 30),
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 8),
	}

	first, _, ok := svc.BestTeacherFor(records, "Barre 57", "Kenkere House", "Monday", "09:00")
	require.True(t, ok)
	assert.Equal(t, "Asha", first)
}

func TestBestTeacherForNoHistory(t *testing.T) {
	svc := newPerformanceFixture()
	_, _, ok := svc.BestTeacherFor(nil, "Barre 57", "Kenkere House", "Monday", "09:00")
	assert.False(t, ok)
}

func TestLocationSummaries(t *testing.T) {
	svc := newPerformanceFixture()
	records := []models.ClassRecord{
		record("Barre 57", "Kenkere House", "Monday", "09:00", "Asha", "Pillai", 10),
		record("Mat 57", "Kenkere House", "Tuesday", "09:00", "Asha", "Pillai", 6),
		record("Power Cycle", "Supreme HQ, Bandra", "Monday", "09:00", "Meera", "Shah", 14),
	}

	summaries := svc.LocationSummaries(records)
	require.Len(t, summaries, 2)
	for _, summary := range summaries {
		if summary.Location == "Kenkere House" {
			assert.Equal(t, 2, summary.TotalClasses)
			assert.InEpsilon(t, 8.0, summary.AvgParticipants, 1e-9)
		}
	}
}

func TestTeacherUtilization(t *testing.T) {
	svc := newPerformanceFixture()
	schedule := []models.ScheduledClass{
		{Day: "Monday", Time: "09:00", TeacherFirstName: "Asha", TeacherLastName: "Pillai", Duration: "1"},
		{Day: "Monday", Time: "10:00", TeacherFirstName: "Asha", TeacherLastName: "Pillai", Duration: "1.5"},
		{Day: "Wednesday", Time: "18:00", TeacherFirstName: "Asha", TeacherLastName: "Pillai", Duration: "1"},
	}

	util := svc.TeacherUtilization(schedule)
	require.Len(t, util, 1)
	assert.InEpsilon(t, 3.5, util[0].WeeklyHours, 1e-9)
	assert.Equal(t, 3, util[0].Classes)
	assert.Equal(t, 5, util[0].DaysOff)
}
