package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
)

// PerformanceService aggregates historic class records into per-slot
// statistics and derives top-performing combinations. Aggregation is a
// pure function over its inputs; caching is a transparent layer on top.
type PerformanceService struct {
	rules  RuleSet
	cache  *CacheService
	logger *zap.Logger
}

// NewPerformanceService constructs the analyzer.
func NewPerformanceService(rules RuleSet, cache *CacheService, logger *zap.Logger) *PerformanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{rules: rules, cache: cache, logger: logger}
}

// AggregateOptions narrows an aggregation pass.
type AggregateOptions struct {
	Location   string
	ByTeacher  bool
	MinAverage float64
}

// Aggregate groups history by (format, location, day, time[, teacher])
// and computes averages. Malformed records are skipped, never fatal.
// Empty input yields empty output.
func (s *PerformanceService) Aggregate(records []models.ClassRecord, opts AggregateOptions) []models.SlotPerformance {
	type bucket struct {
		key          models.SlotKey
		participants float64
		revenue      float64
		count        int
	}
	buckets := make(map[models.SlotKey]*bucket)

	for _, rec := range records {
		if !rec.Valid() {
			continue
		}
		if opts.Location != "" && rec.Location != opts.Location {
			continue
		}
		key := models.SlotKey{
			ClassFormat: rec.ClassFormat,
			Location:    rec.Location,
			Day:         rec.Day,
			Time:        normalizeClock(rec.Time),
		}
		if opts.ByTeacher {
			key.Teacher = rec.TeacherName()
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{key: key}
			buckets[key] = b
		}
		b.participants += rec.Participants
		b.revenue += rec.TotalRevenue
		b.count++
	}

	out := make([]models.SlotPerformance, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.SlotPerformance{
			ClassFormat:     b.key.ClassFormat,
			Location:        b.key.Location,
			Day:             b.key.Day,
			Time:            b.key.Time,
			Teacher:         b.key.Teacher,
			AvgParticipants: round1(b.participants / float64(b.count)),
			AvgRevenue:      math.Round(b.revenue / float64(b.count)),
			Frequency:       b.count,
		})
	}
	sortPerformances(out)
	return out
}

// TopClasses returns the ranked top-performer list: sample size at least
// the configured floor, average above threshold, hosted formats and
// location-ineligible pairs excluded.
func (s *PerformanceService) TopClasses(ctx context.Context, records []models.ClassRecord, query dto.TopClassesQuery) []models.SlotPerformance {
	minAvg := query.MinAverage
	if minAvg <= 0 {
		minAvg = s.rules.MinAverage()
	}

	cacheKey := fmt.Sprintf("perf:top:%s:%.1f:%t:%d", query.Location, minAvg, query.ByTeacher, len(records))
	var cached []models.SlotPerformance
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return limitPerformances(cached, query.Limit)
		}
	}

	aggregates := s.Aggregate(records, AggregateOptions{Location: query.Location, ByTeacher: query.ByTeacher})
	top := make([]models.SlotPerformance, 0, len(aggregates))
	for _, agg := range aggregates {
		if agg.Frequency < s.rules.MinOccurrences() {
			continue
		}
		if agg.AvgParticipants < minAvg {
			continue
		}
		if IsHostedFormat(agg.ClassFormat) {
			continue
		}
		if !s.rules.ClassAllowedAtLocation(agg.ClassFormat, agg.Location) {
			continue
		}
		if agg.Teacher != "" && s.rules.IsExcludedTeacher(agg.Teacher) {
			continue
		}
		top = append(top, agg)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, top, 0); err != nil {
			s.logger.Warn("cache top classes", zap.Error(err))
		}
	}
	return limitPerformances(top, query.Limit)
}

// BestTeacherFor picks the teacher with the highest historic average for
// the exact (format, location, day, time) combination, falling back to
// (format, location) when the exact slot has no teacher history.
// Globally-excluded names never win.
func (s *PerformanceService) BestTeacherFor(records []models.ClassRecord, classFormat, location, day, clock string) (first, last string, ok bool) {
	clock = normalizeClock(clock)
	exact := s.rankTeachers(records, func(r models.ClassRecord) bool {
		return r.ClassFormat == classFormat && r.Location == location &&
			r.Day == day && normalizeClock(r.Time) == clock
	})
	if len(exact) > 0 {
		return exact[0].first, exact[0].last, true
	}
	broad := s.rankTeachers(records, func(r models.ClassRecord) bool {
		return r.ClassFormat == classFormat && r.Location == location
	})
	if len(broad) > 0 {
		return broad[0].first, broad[0].last, true
	}
	return "", "", false
}

type teacherRank struct {
	first, last string
	avg         float64
	count       int
}

func (s *PerformanceService) rankTeachers(records []models.ClassRecord, match func(models.ClassRecord) bool) []teacherRank {
	type stat struct {
		first, last  string
		participants float64
		count        int
	}
	stats := make(map[string]*stat)
	for _, rec := range records {
		if !rec.Valid() || !match(rec) {
			continue
		}
		name := rec.TeacherName()
		if name == "" || s.rules.IsExcludedTeacher(name) {
			continue
		}
		st, ok := stats[name]
		if !ok {
			st = &stat{first: rec.TeacherFirstName, last: rec.TeacherLastName}
			stats[name] = st
		}
		st.participants += rec.Participants
		st.count++
	}

	ranks := make([]teacherRank, 0, len(stats))
	for _, st := range stats {
		ranks = append(ranks, teacherRank{
			first: st.first,
			last:  st.last,
			avg:   st.participants / float64(st.count),
			count: st.count,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].avg != ranks[j].avg {
			return ranks[i].avg > ranks[j].avg
		}
		if ranks[i].count != ranks[j].count {
			return ranks[i].count > ranks[j].count
		}
		return ranks[i].first+ranks[i].last < ranks[j].first+ranks[j].last
	})
	return ranks
}

// LocationSummaries aggregates overall historic performance per location.
func (s *PerformanceService) LocationSummaries(records []models.ClassRecord) []models.LocationSummary {
	type acc struct {
		participants float64
		revenue      float64
		count        int
	}
	byLocation := make(map[string]*acc)
	for _, rec := range records {
		if !rec.Valid() {
			continue
		}
		a, ok := byLocation[rec.Location]
		if !ok {
			a = &acc{}
			byLocation[rec.Location] = a
		}
		a.participants += rec.Participants
		a.revenue += rec.TotalRevenue
		a.count++
	}
	out := make([]models.LocationSummary, 0, len(byLocation))
	for location, a := range byLocation {
		out = append(out, models.LocationSummary{
			Location:        location,
			AvgParticipants: round1(a.participants / float64(a.count)),
			AvgRevenue:      math.Round(a.revenue / float64(a.count)),
			TotalClasses:    a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// TeacherUtilization derives per-teacher weekly load from a schedule.
func (s *PerformanceService) TeacherUtilization(schedule []models.ScheduledClass) []models.TeacherUtilization {
	type acc struct {
		hours float64
		count int
		days  map[string]bool
	}
	byTeacher := make(map[string]*acc)
	for _, cls := range schedule {
		name := cls.TeacherName()
		if name == "" {
			continue
		}
		a, ok := byTeacher[name]
		if !ok {
			a = &acc{days: make(map[string]bool)}
			byTeacher[name] = a
		}
		a.hours += cls.DurationHours()
		a.count++
		a.days[cls.Day] = true
	}
	out := make([]models.TeacherUtilization, 0, len(byTeacher))
	for name, a := range byTeacher {
		out = append(out, models.TeacherUtilization{
			Teacher:     name,
			WeeklyHours: a.hours,
			Classes:     a.count,
			DaysOff:     len(models.Weekdays) - len(a.days),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeeklyHours != out[j].WeeklyHours {
			return out[i].WeeklyHours > out[j].WeeklyHours
		}
		return out[i].Teacher < out[j].Teacher
	})
	return out
}

func sortPerformances(items []models.SlotPerformance) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].AvgParticipants != items[j].AvgParticipants {
			return items[i].AvgParticipants > items[j].AvgParticipants
		}
		if items[i].Frequency != items[j].Frequency {
			return items[i].Frequency > items[j].Frequency
		}
		a := items[i]
		b := items[j]
		return a.Location+a.Day+a.Time+a.ClassFormat+a.Teacher <
			b.Location+b.Day+b.Time+b.ClassFormat+b.Teacher
	})
}

func limitPerformances(items []models.SlotPerformance, limit int) []models.SlotPerformance {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func normalizeClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	return clock
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
