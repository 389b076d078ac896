package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

// ValidatorService checks a finished draft against studio capacity and
// staffing limits. It only reports; it never mutates the schedule, and
// validating the same draft twice yields the same result.
type ValidatorService struct {
	rules        RuleSet
	availability *StudioAvailability
	logger       *zap.Logger
}

func NewValidatorService(rules RuleSet, availability *StudioAvailability, logger *zap.Logger) *ValidatorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidatorService{rules: rules, availability: availability, logger: logger}
}

// Validate scans the draft and reports capacity conflicts plus advisory
// warnings. One conflict line is emitted per (location, day) pair no
// matter how many classes collide there.
func (s *ValidatorService) Validate(schedule []models.ScheduledClass) models.ValidationResult {
	result := models.ValidationResult{
		Conflicts:       []string{},
		Suggestions:     []string{},
		HourWarnings:    []string{},
		TrainerWarnings: []string{},
	}

	result.Conflicts = append(result.Conflicts, s.capacityConflicts(schedule)...)
	result.HourWarnings = append(result.HourWarnings, s.hourWarnings(schedule)...)
	result.TrainerWarnings = append(result.TrainerWarnings, s.trainerWarnings(schedule)...)

	if len(result.Conflicts) > 0 {
		s.logger.Warn("schedule validation found conflicts",
			zap.Int("conflicts", len(result.Conflicts)),
			zap.Int("classes", len(schedule)),
		)
	}
	return result
}

type locationDay struct {
	Location string
	Day      string
}

// capacityConflicts finds (location, day) pairs where the peak number of
// simultaneously running classes exceeds the location's studio count.
func (s *ValidatorService) capacityConflicts(schedule []models.ScheduledClass) []string {
	groups := make(map[locationDay][]models.ScheduledClass)
	for _, cls := range schedule {
		key := locationDay{Location: cls.Location, Day: cls.Day}
		groups[key] = append(groups[key], cls)
	}

	keys := make([]locationDay, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Location != keys[j].Location {
			return keys[i].Location < keys[j].Location
		}
		return keys[i].Day < keys[j].Day
	})

	var conflicts []string
	for _, key := range keys {
		studios := s.availability.StudioCount(key.Location)
		if studios == 0 {
			continue
		}
		peak := peakOverlap(groups[key])
		if peak > studios {
			conflicts = append(conflicts, fmt.Sprintf(
				"%s on %s: %d overlapping classes exceed %d available studios",
				key.Location, key.Day, peak, studios,
			))
		}
	}
	return conflicts
}

// peakOverlap is the maximum number of classes running at the same
// instant, computed with a half-open sweep so back-to-back classes do
// not collide.
func peakOverlap(classes []models.ScheduledClass) int {
	type event struct {
		minute int
		delta  int
	}
	events := make([]event, 0, len(classes)*2)
	for _, cls := range classes {
		start, ok := clockToMinutes(cls.Time)
		if !ok {
			continue
		}
		end := start + int(cls.DurationHours()*60)
		events = append(events, event{minute: start, delta: 1}, event{minute: end, delta: -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].minute != events[j].minute {
			return events[i].minute < events[j].minute
		}
		// Ends before starts at the same minute.
		return events[i].delta < events[j].delta
	})

	peak, running := 0, 0
	for _, ev := range events {
		running += ev.delta
		if running > peak {
			peak = running
		}
	}
	return peak
}

func (s *ValidatorService) hourWarnings(schedule []models.ScheduledClass) []string {
	weekly := make(map[string]float64)
	daily := make(map[string]map[string]float64)
	display := make(map[string]string)
	for _, cls := range schedule {
		teacher := normalizeName(cls.TeacherName())
		if teacher == "" {
			continue
		}
		display[teacher] = cls.TeacherName()
		weekly[teacher] += cls.DurationHours()
		if daily[teacher] == nil {
			daily[teacher] = make(map[string]float64)
		}
		daily[teacher][cls.Day] += cls.DurationHours()
	}

	teachers := make([]string, 0, len(weekly))
	for name := range weekly {
		teachers = append(teachers, name)
	}
	sort.Strings(teachers)

	var warnings []string
	for _, teacher := range teachers {
		limit := s.rules.WeeklyHourCap(teacher)
		if weekly[teacher] > limit {
			warnings = append(warnings, fmt.Sprintf(
				"%s is scheduled %.1f hours, above the %.0f hour weekly limit",
				display[teacher], weekly[teacher], limit,
			))
		}
		days := make([]string, 0, len(daily[teacher]))
		for day := range daily[teacher] {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			if daily[teacher][day] > s.rules.MaxDailyHours() {
				warnings = append(warnings, fmt.Sprintf(
					"%s is scheduled %.1f hours on %s, above the %.0f hour daily limit",
					display[teacher], daily[teacher][day], day, s.rules.MaxDailyHours(),
				))
			}
		}
	}
	return warnings
}

func (s *ValidatorService) trainerWarnings(schedule []models.ScheduledClass) []string {
	shifts := make(map[shiftKey]map[string]bool)
	for _, cls := range schedule {
		shift, ok := s.rules.ShiftOf(cls.Time)
		if !ok {
			continue
		}
		key := shiftKey{Location: cls.Location, Day: cls.Day, Shift: shift}
		if shifts[key] == nil {
			shifts[key] = make(map[string]bool)
		}
		shifts[key][normalizeName(cls.TeacherName())] = true
	}

	keys := make([]shiftKey, 0, len(shifts))
	for key := range shifts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Location != keys[j].Location {
			return keys[i].Location < keys[j].Location
		}
		if keys[i].Day != keys[j].Day {
			return keys[i].Day < keys[j].Day
		}
		return keys[i].Shift < keys[j].Shift
	})

	var warnings []string
	for _, key := range keys {
		limit := s.rules.MaxTrainersPerShift(key.Location)
		if len(shifts[key]) > limit {
			warnings = append(warnings, fmt.Sprintf(
				"%s on %s (%s shift): %d trainers assigned, limit is %d",
				key.Location, key.Day, key.Shift, len(shifts[key]), limit,
			))
		}
	}
	return warnings
}
