package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
)

func testSchedulerConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Locations:        []string{"Kwality House, Kemps Corner", "Supreme HQ, Bandra", "Kenkere House"},
		FlagshipLocation: "Supreme HQ, Bandra",
		AnchorLocation:   "Kwality House, Kemps Corner",
		AnchorTime:       "07:30",
		ExcludedTeachers: []string{"Nishanth Raj"},
		JuniorTeachers:   []string{"Kabir Mehta"},
	}
}

func testRules() RuleSet {
	return NewRuleSet(testSchedulerConfig(), models.DefaultStudioCapacities)
}

func TestRuleSetFlagshipFormatEligibility(t *testing.T) {
	rules := testRules()
	flagship := "Supreme HQ, Bandra"
	standard := "Kwality House, Kemps Corner"

	assert.True(t, rules.ClassAllowedAtLocation("Power Cycle", flagship))
	assert.True(t, rules.ClassAllowedAtLocation("Cycle Express", flagship))
	assert.False(t, rules.ClassAllowedAtLocation("Barre 57", flagship), "non-cycle formats stay off the flagship floor")
	assert.False(t, rules.ClassAllowedAtLocation("HIIT Cycle", flagship), "high intensity banned even within the cycle family")
	assert.False(t, rules.ClassAllowedAtLocation("Amped Up Cycle", flagship))

	assert.True(t, rules.ClassAllowedAtLocation("Barre 57", standard))
	assert.True(t, rules.ClassAllowedAtLocation("HIIT", standard))
	assert.False(t, rules.ClassAllowedAtLocation("Power Cycle", standard), "cycle formats only run at the flagship")
}

func TestRuleSetTimeRestrictionBand(t *testing.T) {
	rules := testRules()

	assert.False(t, rules.IsTimeRestricted("11:59", "Monday"))
	assert.True(t, rules.IsTimeRestricted("12:00", "Monday"))
	assert.True(t, rules.IsTimeRestricted("14:30", "Monday"))
	assert.True(t, rules.IsTimeRestricted("15:59", "Monday"))
	assert.False(t, rules.IsTimeRestricted("16:00", "Monday"), "band end is exclusive")
	assert.True(t, rules.IsTimeRestricted("13:00", "Saturday"))
	assert.True(t, rules.IsTimeRestricted("not-a-time", "Monday"), "unparsable times never pass")
}

func TestRuleSetShiftClassification(t *testing.T) {
	rules := testRules()

	shift, ok := rules.ShiftOf("07:30")
	assert.True(t, ok)
	assert.Equal(t, ShiftMorning, shift)

	shift, ok = rules.ShiftOf("13:59")
	assert.True(t, ok)
	assert.Equal(t, ShiftMorning, shift)

	_, ok = rules.ShiftOf("14:00")
	assert.False(t, ok, "14:00-15:00 is the dead zone")
	_, ok = rules.ShiftOf("14:59")
	assert.False(t, ok)

	shift, ok = rules.ShiftOf("15:00")
	assert.True(t, ok)
	assert.Equal(t, ShiftEvening, shift)
}

func TestRuleSetParallelCapBoundedByStudios(t *testing.T) {
	rules := testRules()

	// Kenkere has two studios, fewer than any configured cap.
	assert.Equal(t, 2, rules.MaxParallelClasses("Kenkere House"))
	// Supreme HQ has three studios and the flagship cap is three.
	assert.Equal(t, 3, rules.MaxParallelClasses("Supreme HQ, Bandra"))
	// Kwality has four studios; the standard cap of two binds first.
	assert.Equal(t, 2, rules.MaxParallelClasses("Kwality House, Kemps Corner"))
}

func TestRuleSetTrainerCaps(t *testing.T) {
	rules := testRules()
	assert.Equal(t, 3, rules.MaxTrainersPerShift("Supreme HQ, Bandra"))
	assert.Equal(t, 2, rules.MaxTrainersPerShift("Kenkere House"))
}

func TestRuleSetTeacherRosters(t *testing.T) {
	rules := testRules()

	assert.True(t, rules.IsExcludedTeacher("Nishanth Raj"))
	assert.True(t, rules.IsExcludedTeacher("  nishanth   RAJ "), "name matching is case and whitespace insensitive")
	assert.False(t, rules.IsExcludedTeacher("Asha Pillai"))

	assert.True(t, rules.IsJuniorTeacher("Kabir Mehta"))
	assert.InEpsilon(t, 10.0, rules.WeeklyHourCap("Kabir Mehta"), 1e-9)
	assert.InEpsilon(t, 15.0, rules.WeeklyHourCap("Asha Pillai"), 1e-9)
}

func TestRuleSetJuniorFormats(t *testing.T) {
	rules := testRules()

	assert.True(t, rules.JuniorFormatAllowed("Barre 57"))
	assert.True(t, rules.JuniorFormatAllowed("Studio Foundations"))
	assert.True(t, rules.JuniorFormatAllowed("Power Cycle"))
	assert.False(t, rules.JuniorFormatAllowed("Advanced HIIT"))
}

func TestIsHostedFormat(t *testing.T) {
	assert.True(t, IsHostedFormat("Hosted Class"))
	assert.True(t, IsHostedFormat("Birthday (Hosted)"))
	assert.False(t, IsHostedFormat("Barre 57"))
}

func TestClockHelpers(t *testing.T) {
	mins, ok := clockToMinutes("07:30")
	assert.True(t, ok)
	assert.Equal(t, 450, mins)

	mins, ok = clockToMinutes("19:45:00")
	assert.True(t, ok, "seconds are tolerated and truncated")
	assert.Equal(t, 19*60+45, mins)

	_, ok = clockToMinutes("25:00")
	assert.False(t, ok)
	_, ok = clockToMinutes("")
	assert.False(t, ok)

	assert.Equal(t, "07:05", minutesToClock(425))
}
