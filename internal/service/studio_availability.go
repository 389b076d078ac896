package service

import (
	"github.com/tristudio/studio-scheduler-api/internal/models"
)

const (
	probeStepMinutes  = 15
	probeMaxAttempts  = 12
	probeCutoffMinute = 21 * 60
)

// StudioAvailability answers room-availability questions against a
// schedule snapshot. It holds no per-run state; every call derives the
// occupied intervals from the schedule it is handed.
type StudioAvailability struct {
	capacities models.StudioCapacityTable
}

// NewStudioAvailability builds a tracker over the studio table.
func NewStudioAvailability(capacities models.StudioCapacityTable) *StudioAvailability {
	if len(capacities) == 0 {
		capacities = models.DefaultStudioCapacities
	}
	return &StudioAvailability{capacities: capacities}
}

// FirstFreeStudio returns the first named studio at the location whose
// existing bookings on that day do not overlap the candidate interval.
// Unavailability is a normal signal, not an error. excludeID lets an
// edited class be re-checked against the rest of the schedule.
func (a *StudioAvailability) FirstFreeStudio(location, day, start string, durationHours float64, schedule []models.ScheduledClass, excludeID string) (string, bool) {
	startMins, ok := clockToMinutes(start)
	if !ok || durationHours <= 0 {
		return "", false
	}
	endMins := startMins + int(durationHours*60)
	if endMins > 24*60 {
		// Same-day wraparound is unsupported.
		return "", false
	}

	studios := a.capacities.StudioNames(location)
	if len(studios) == 0 {
		return "", false
	}

	// Bin existing bookings per studio. Entries that carry an assigned
	// studio keep it; the rest are placed greedily, in insertion order,
	// into the first studio free for their interval.
	byStudio := make(map[string][][2]int, len(studios))
	place := func(studio string, start, end int) {
		byStudio[studio] = append(byStudio[studio], [2]int{start, end})
	}
	studioFree := func(studio string, start, end int) bool {
		for _, iv := range byStudio[studio] {
			if intervalsOverlap(start, end, iv[0], iv[1]) {
				return false
			}
		}
		return true
	}

	for _, cls := range schedule {
		if cls.Location != location || cls.Day != day || cls.ID == excludeID {
			continue
		}
		existingStart, ok := clockToMinutes(cls.Time)
		if !ok {
			continue
		}
		existingEnd := existingStart + int(cls.DurationHours()*60)
		if cls.StudioAssigned != "" {
			place(cls.StudioAssigned, existingStart, existingEnd)
			continue
		}
		for _, studio := range studios {
			if studioFree(studio, existingStart, existingEnd) {
				place(studio, existingStart, existingEnd)
				break
			}
		}
	}

	for _, studio := range studios {
		if studioFree(studio, startMins, endMins) {
			return studio, true
		}
	}
	return "", false
}

// NextFreeTime probes forward from the preferred start in fixed
// increments until a studio frees up, bounded by a small attempt budget
// and a hard evening cutoff.
func (a *StudioAvailability) NextFreeTime(location, day, preferred string, durationHours float64, schedule []models.ScheduledClass) (string, bool) {
	mins, ok := clockToMinutes(preferred)
	if !ok {
		return "", false
	}
	for attempt := 0; attempt < probeMaxAttempts; attempt++ {
		candidate := minutesToClock(mins)
		if _, free := a.FirstFreeStudio(location, day, candidate, durationHours, schedule, ""); free {
			return candidate, true
		}
		mins += probeStepMinutes
		if mins >= probeCutoffMinute {
			break
		}
	}
	return "", false
}

// StudioCount exposes the parallelism bound for validation.
func (a *StudioAvailability) StudioCount(location string) int {
	return a.capacities.StudioCount(location)
}

// intervalsOverlap implements half-open interval semantics: a class
// ending exactly when another starts does not conflict.
func intervalsOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && endA > startB
}
