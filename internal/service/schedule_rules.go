package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
)

// Shift is one half of the schedulable day. The 14:00-15:00 gap is an
// intentional dead zone and classifies as neither shift.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
)

// RuleSet encodes the studio's standing business rules as stateless
// predicates. Built once from configuration and shared read-only by the
// optimizer and the validator.
type RuleSet struct {
	locations        []string
	flagshipLocation string
	anchorLocation   string
	anchorTime       string

	restrictStart    int
	restrictEnd      int
	weekendRestrictEnd int

	maxWeeklyHours       float64
	maxWeeklyHoursJunior float64
	maxDailyHours        float64
	minDaysOff           int

	maxTrainersFlagship int
	maxTrainersStandard int
	maxParallelFlagship int
	maxParallelStandard int
	consecutiveWindow   int

	minAverage     float64
	minOccurrences int
	topFloor       float64

	excludedTeachers map[string]bool
	juniorTeachers   map[string]bool
	juniorFormats    []string

	capacities models.StudioCapacityTable
}

// NewRuleSet builds the rule table from configuration, falling back to
// policy defaults for any unset or unparsable value.
func NewRuleSet(cfg config.SchedulerConfig, capacities models.StudioCapacityTable) RuleSet {
	if len(capacities) == 0 {
		capacities = models.DefaultStudioCapacities
	}
	rs := RuleSet{
		locations:            cfg.Locations,
		flagshipLocation:     cfg.FlagshipLocation,
		anchorLocation:       cfg.AnchorLocation,
		anchorTime:           cfg.AnchorTime,
		restrictStart:        clockOrDefault(cfg.RestrictionStart, 12*60),
		restrictEnd:          clockOrDefault(cfg.RestrictionEnd, 16*60),
		weekendRestrictEnd:   clockOrDefault(cfg.WeekendRestrictEnd, 16*60),
		maxWeeklyHours:       defaultFloat(cfg.MaxWeeklyHours, 15),
		maxWeeklyHoursJunior: defaultFloat(cfg.MaxWeeklyHoursJunior, 10),
		maxDailyHours:        defaultFloat(cfg.MaxDailyHours, 4),
		minDaysOff:           defaultInt(cfg.MinDaysOff, 2),
		maxTrainersFlagship:  defaultInt(cfg.MaxTrainersFlagship, 3),
		maxTrainersStandard:  defaultInt(cfg.MaxTrainersStandard, 2),
		maxParallelFlagship:  defaultInt(cfg.MaxParallelFlagship, 3),
		maxParallelStandard:  defaultInt(cfg.MaxParallelStandard, 2),
		consecutiveWindow:    defaultInt(cfg.ConsecutiveWindowMins, 120),
		minAverage:           defaultFloat(cfg.MinAverageAttendance, 5),
		minOccurrences:       defaultInt(cfg.MinOccurrences, 2),
		topFloor:             defaultFloat(cfg.TopPerformerFloor, 8),
		excludedTeachers:     nameSet(cfg.ExcludedTeachers),
		juniorTeachers:       nameSet(cfg.JuniorTeachers),
		capacities:           capacities,
	}
	if len(rs.locations) == 0 {
		for location := range capacities {
			rs.locations = append(rs.locations, location)
		}
	}
	if rs.anchorTime == "" {
		rs.anchorTime = "07:30"
	}
	for _, f := range cfg.JuniorFormats {
		rs.juniorFormats = append(rs.juniorFormats, strings.ToLower(f))
	}
	if len(rs.juniorFormats) == 0 {
		rs.juniorFormats = []string{"barre 57", "foundations", "recovery", "power cycle"}
	}
	return rs
}

// Locations returns the schedulable locations in configured order.
func (r RuleSet) Locations() []string { return r.locations }

// AnchorLocation is the site carrying the mandatory weekday early slot.
func (r RuleSet) AnchorLocation() string { return r.anchorLocation }

// AnchorTime is the mandatory weekday early slot start time.
func (r RuleSet) AnchorTime() string { return r.anchorTime }

// Capacities exposes the studio table for availability checks.
func (r RuleSet) Capacities() models.StudioCapacityTable { return r.capacities }

// MinAverage is the gap-fill attendance threshold.
func (r RuleSet) MinAverage() float64 { return r.minAverage }

// MinOccurrences is the top-performer sample-size floor.
func (r RuleSet) MinOccurrences() int { return r.minOccurrences }

// TopPerformerFloor marks placements flagged as proven top performers.
func (r RuleSet) TopPerformerFloor() float64 { return r.topFloor }

// MinDaysOff is the binding weekly rest invariant.
func (r RuleSet) MinDaysOff() int { return r.minDaysOff }

// MaxDailyHours caps one teacher's daily load.
func (r RuleSet) MaxDailyHours() float64 { return r.maxDailyHours }

// ClassAllowedAtLocation applies the bidirectional location/format table:
// the flagship site is the exclusive home of the cycle family and bans the
// high-intensity family; every other site bans the cycle family.
func (r RuleSet) ClassAllowedAtLocation(classFormat, location string) bool {
	format := strings.ToLower(classFormat)
	cycle := strings.Contains(format, "cycle")
	if location == r.flagshipLocation {
		if strings.Contains(format, "hiit") || strings.Contains(format, "amped up") {
			return false
		}
		return cycle
	}
	return !cycle
}

// IsTimeRestricted reports whether a class may not start at the given
// clock time on the given day. The band is half-open: a start exactly at
// the band end is allowed.
func (r RuleSet) IsTimeRestricted(clock, day string) bool {
	mins, ok := clockToMinutes(clock)
	if !ok {
		return true
	}
	end := r.restrictEnd
	if models.IsWeekend(day) {
		end = r.weekendRestrictEnd
	}
	return mins >= r.restrictStart && mins < end
}

// ShiftOf classifies a start time. Times inside the 14:00-15:00 gap
// return ok=false and are never schedulable in practice.
func (r RuleSet) ShiftOf(clock string) (Shift, bool) {
	mins, ok := clockToMinutes(clock)
	if !ok {
		return "", false
	}
	switch {
	case mins < 14*60:
		return ShiftMorning, true
	case mins >= 15*60:
		return ShiftEvening, true
	default:
		return "", false
	}
}

// MaxParallelClasses caps simultaneous classes at a location: the lower of
// the configured cap and the named studio count.
func (r RuleSet) MaxParallelClasses(location string) int {
	limit := r.maxParallelStandard
	if location == r.flagshipLocation {
		limit = r.maxParallelFlagship
	}
	if studios := r.capacities.StudioCount(location); studios > 0 && studios < limit {
		return studios
	}
	return limit
}

// MaxTrainersPerShift caps distinct trainers per (location, day, shift).
func (r RuleSet) MaxTrainersPerShift(location string) int {
	if location == r.flagshipLocation {
		return r.maxTrainersFlagship
	}
	return r.maxTrainersStandard
}

// WeeklyHourCap returns the teacher's weekly ceiling, lower for juniors.
func (r RuleSet) WeeklyHourCap(teacher string) float64 {
	if r.IsJuniorTeacher(teacher) {
		return r.maxWeeklyHoursJunior
	}
	return r.maxWeeklyHours
}

// JuniorWeeklyHourCap returns the junior weekly ceiling regardless of
// how the teacher's junior status was established.
func (r RuleSet) JuniorWeeklyHourCap() float64 {
	return r.maxWeeklyHoursJunior
}

// IsJuniorTeacher reports whether the teacher is on the restricted roster.
func (r RuleSet) IsJuniorTeacher(teacher string) bool {
	return r.juniorTeachers[normalizeName(teacher)]
}

// IsExcludedTeacher reports whether the teacher must never be assigned
// (departed staff and similar).
func (r RuleSet) IsExcludedTeacher(teacher string) bool {
	return r.excludedTeachers[normalizeName(teacher)]
}

// JuniorFormatAllowed restricts junior trainers to the beginner-friendly
// format allow-list.
func (r RuleSet) JuniorFormatAllowed(classFormat string) bool {
	format := strings.ToLower(classFormat)
	for _, allowed := range r.juniorFormats {
		if strings.Contains(format, allowed) {
			return true
		}
	}
	return false
}

// IsHostedFormat flags guest/rental sessions excluded from optimization.
func IsHostedFormat(classFormat string) bool {
	return strings.Contains(strings.ToLower(classFormat), "hosted")
}

// ConsecutiveWindowMins is the span within which a teacher may hold at
// most two classes.
func (r RuleSet) ConsecutiveWindowMins() int { return r.consecutiveWindow }

// --- Clock helpers ---

// clockToMinutes parses "HH:MM" into minutes since midnight.
func clockToMinutes(clock string) (int, bool) {
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}

func minutesToClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func clockOrDefault(clock string, fallback int) int {
	if mins, ok := clockToMinutes(clock); ok {
		return mins
	}
	return fallback
}

func defaultFloat(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if n = normalizeName(n); n != "" {
			set[n] = true
		}
	}
	return set
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
