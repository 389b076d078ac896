package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type historyReader interface {
	ListAll(ctx context.Context) ([]models.ClassRecord, error)
}

type rosterReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type draftSuggester interface {
	Suggest(ctx context.Context, history []models.ClassRecord, opts dto.OptimizeOptions) ([]models.ScheduledClass, error)
}

// OptimizerService builds weekly timetable drafts. The local constructor
// is a deterministic greedy four-phase pass; the optional remote
// suggester is an alternate draft source whose failure is never
// observable to callers.
type OptimizerService struct {
	rules        RuleSet
	performance  *PerformanceService
	availability *StudioAvailability
	history      historyReader
	roster       rosterReader
	suggester    draftSuggester
	validator    *ValidatorService
	validate     *validator.Validate
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewOptimizerService wires the optimizer dependencies.
func NewOptimizerService(
	rules RuleSet,
	performance *PerformanceService,
	availability *StudioAvailability,
	history historyReader,
	roster rosterReader,
	suggester draftSuggester,
	validatorSvc *ValidatorService,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
) *OptimizerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizerService{
		rules:        rules,
		performance:  performance,
		availability: availability,
		history:      history,
		roster:       roster,
		suggester:    suggester,
		validator:    validatorSvc,
		validate:     validate,
		metrics:      metrics,
		logger:       logger,
	}
}

// Optimize runs a full draft-and-validate cycle: load history and roster,
// obtain a draft (remote when requested and configured, local otherwise
// or on any remote failure), and attach validator output.
func (s *OptimizerService) Optimize(ctx context.Context, req dto.OptimizeRequest) (*dto.OptimizeResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}

	records, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class history")
	}

	var roster []models.Teacher
	if s.roster != nil {
		roster, err = s.roster.ListActive(ctx)
		if err != nil {
			// The roster is supplementary input; construction degrades to
			// history-only teacher inference.
			s.logger.Warn("roster unavailable, using historic teachers", zap.Error(err))
			roster = nil
		}
	}

	source := models.ScheduleSourceLocal
	var draft []models.ScheduledClass
	if req.Options.UseRemoteSuggestion && s.suggester != nil {
		draft, err = s.suggester.Suggest(ctx, records, req.Options)
		if err != nil || len(draft) == 0 {
			s.logger.Warn("remote suggestion failed, using local optimization", zap.Error(err))
			draft = nil
		} else {
			source = models.ScheduleSourceRemote
		}
	}
	if draft == nil {
		draft = s.Construct(ctx, records, roster, req.Options)
	}

	result := s.validator.Validate(draft)
	if s.metrics != nil {
		s.metrics.ObserveOptimizeRun(source, len(draft), len(result.Conflicts))
	}
	s.logger.Info("schedule draft built",
		zap.String("source", source),
		zap.Int("classes", len(draft)),
		zap.Int("conflicts", len(result.Conflicts)),
	)

	return &dto.OptimizeResponse{Source: source, Schedule: draft, Validation: result}, nil
}

// Construct is the local greedy constructor. It never fails: an empty
// result is a valid (if unhelpful) output for empty or unsatisfiable
// input. All ledgers are owned by this run and discarded at return.
func (s *OptimizerService) Construct(ctx context.Context, records []models.ClassRecord, roster []models.Teacher, opts dto.OptimizeOptions) []models.ScheduledClass {
	start := time.Now()
	run := s.newRun(records, roster, opts)

	phases := []func(){
		run.placeAnchors,
		run.placeTopPerformers,
		run.fillGaps,
		run.enforceDaysOff,
	}
	for _, phase := range phases {
		if ctx.Err() != nil {
			// Cancellation discards the in-progress draft and ledgers;
			// nothing partial is ever handed back.
			return nil
		}
		phase()
	}

	s.logger.Debug("constructor finished",
		zap.Int("classes", len(run.schedule)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return run.schedule
}

// --- Run state ---

type shiftKey struct {
	Location string
	Day      string
	Shift    Shift
}

type teacherLedger struct {
	weeklyHours float64
	dailyHours  map[string]float64
	dayLocation map[string]string
	dayShift    map[string]Shift
}

func newTeacherLedger() *teacherLedger {
	return &teacherLedger{
		dailyHours:  make(map[string]float64),
		dayLocation: make(map[string]string),
		dayShift:    make(map[string]Shift),
	}
}

type optimizerRun struct {
	svc        *OptimizerService
	rules      RuleSet
	history    []models.ClassRecord
	roster     map[string]models.Teacher
	hasRoster  bool
	minAverage float64
	iteration  int

	schedule      []models.ScheduledClass
	ledgers       map[string]*teacherLedger
	shiftTrainers map[shiftKey]map[string]bool

	slotIndex map[models.SlotKey][]models.SlotPerformance
	ranked    []models.SlotPerformance
}

func (s *OptimizerService) newRun(records []models.ClassRecord, roster []models.Teacher, opts dto.OptimizeOptions) *optimizerRun {
	run := &optimizerRun{
		svc:           s,
		rules:         s.rules,
		history:       records,
		roster:        make(map[string]models.Teacher, len(roster)),
		hasRoster:     len(roster) > 0,
		minAverage:    opts.MinAverageAttendance,
		iteration:     opts.Iteration,
		ledgers:       make(map[string]*teacherLedger),
		shiftTrainers: make(map[shiftKey]map[string]bool),
		slotIndex:     make(map[models.SlotKey][]models.SlotPerformance),
	}
	if run.minAverage <= 0 {
		run.minAverage = s.rules.MinAverage()
	}
	for _, t := range roster {
		run.roster[normalizeName(t.FullName())] = t
	}

	aggregates := s.performance.Aggregate(records, AggregateOptions{Location: opts.LocationFilter})
	for _, agg := range aggregates {
		key := models.SlotKey{Location: agg.Location, Day: agg.Day, Time: agg.Time}
		run.slotIndex[key] = append(run.slotIndex[key], agg)
	}
	for _, agg := range aggregates {
		if agg.Frequency < s.rules.MinOccurrences() {
			continue
		}
		if agg.AvgParticipants < run.minAverage {
			continue
		}
		if IsHostedFormat(agg.ClassFormat) {
			continue
		}
		if !s.rules.ClassAllowedAtLocation(agg.ClassFormat, agg.Location) {
			continue
		}
		run.ranked = append(run.ranked, agg)
	}
	return run
}

// --- Phase 1: mandatory early anchors ---

// placeAnchors force-places the best historic class at the anchor slot
// for each weekday, modelling the guaranteed early-coverage requirement.
func (r *optimizerRun) placeAnchors() {
	location := r.rules.AnchorLocation()
	clock := r.rules.AnchorTime()
	for _, day := range models.Weekdays {
		if models.IsWeekend(day) {
			continue
		}
		key := models.SlotKey{Location: location, Day: day, Time: clock}
		for _, candidate := range r.slotIndex[key] {
			if r.tryPlace(candidate, clock, "anchor") {
				break
			}
		}
	}
}

// --- Phase 2: ranked top-performer placement ---

func (r *optimizerRun) placeTopPerformers() {
	for _, candidate := range r.ranked {
		if r.tryPlace(candidate, candidate.Time, "top") {
			continue
		}
		// The exact historic slot is blocked; probe a few nearby times.
		alt, ok := r.svc.availability.NextFreeTime(candidate.Location, candidate.Day, candidate.Time, 1, r.schedule)
		if ok && alt != candidate.Time {
			r.tryPlace(candidate, alt, "top")
		}
	}
}

// --- Phase 3: gap filling ---

var fillSlots = buildFillSlots()

func buildFillSlots() []string {
	var slots []string
	for mins := 7 * 60; mins <= 11*60+30; mins += 30 {
		slots = append(slots, minutesToClock(mins))
	}
	for mins := 17 * 60; mins <= 20*60+30; mins += 30 {
		slots = append(slots, minutesToClock(mins))
	}
	return slots
}

func (r *optimizerRun) fillGaps() {
	for _, location := range r.rules.Locations() {
		for _, day := range models.Weekdays {
			for _, clock := range fillSlots {
				r.fillSlot(location, day, clock)
			}
		}
	}
}

func (r *optimizerRun) fillSlot(location, day, clock string) {
	key := models.SlotKey{Location: location, Day: day, Time: clock}
	for _, candidate := range r.slotIndex[key] {
		if r.overlapCount(location, day, clock, 1) >= r.rules.MaxParallelClasses(location) {
			return
		}
		if candidate.AvgParticipants <= r.minAverage {
			continue
		}
		if r.formatInSlot(location, day, clock, candidate.ClassFormat) {
			continue
		}
		r.tryPlace(candidate, clock, "fill")
	}
}

// --- Phase 4: fairness repair ---

// enforceDaysOff removes classes from each over-committed teacher's
// least-loaded day until the minimum-days-off invariant holds. A pure
// reduction pass: it only removes, never adds, and terminates because
// every removal clears a whole day.
func (r *optimizerRun) enforceDaysOff() {
	teachers := make([]string, 0, len(r.ledgers))
	for name := range r.ledgers {
		teachers = append(teachers, name)
	}
	sort.Strings(teachers)

	for _, teacher := range teachers {
		for r.daysOff(teacher) < r.rules.MinDaysOff() {
			day, ok := r.leastLoadedDay(teacher)
			if !ok {
				break
			}
			r.removeTeacherDay(teacher, day)
		}
	}
}

func (r *optimizerRun) daysOff(teacher string) int {
	ledger := r.ledgers[teacher]
	if ledger == nil {
		return len(models.Weekdays)
	}
	worked := 0
	for _, hours := range ledger.dailyHours {
		if hours > 0 {
			worked++
		}
	}
	return len(models.Weekdays) - worked
}

// leastLoadedDay picks the day with the fewest assigned hours; ties go to
// the day first assigned (insertion order over the draft schedule).
func (r *optimizerRun) leastLoadedDay(teacher string) (string, bool) {
	ledger := r.ledgers[teacher]
	if ledger == nil {
		return "", false
	}
	firstSeen := make(map[string]int)
	for i, cls := range r.schedule {
		if normalizeName(cls.TeacherName()) != teacher {
			continue
		}
		if _, ok := firstSeen[cls.Day]; !ok {
			firstSeen[cls.Day] = i
		}
	}

	best := ""
	bestHours := 0.0
	for day, hours := range ledger.dailyHours {
		if hours <= 0 {
			continue
		}
		if best == "" || hours < bestHours || (hours == bestHours && firstSeen[day] < firstSeen[best]) {
			best = day
			bestHours = hours
		}
	}
	return best, best != ""
}

func (r *optimizerRun) removeTeacherDay(teacher, day string) {
	ledger := r.ledgers[teacher]
	kept := r.schedule[:0]
	for _, cls := range r.schedule {
		if normalizeName(cls.TeacherName()) == teacher && cls.Day == day {
			ledger.weeklyHours -= cls.DurationHours()
			if shift, ok := r.rules.ShiftOf(cls.Time); ok {
				key := shiftKey{Location: cls.Location, Day: day, Shift: shift}
				if set := r.shiftTrainers[key]; set != nil {
					delete(set, teacher)
				}
			}
			continue
		}
		kept = append(kept, cls)
	}
	r.schedule = kept
	delete(ledger.dailyHours, day)
	delete(ledger.dayLocation, day)
	delete(ledger.dayShift, day)
}

// --- Placement ---

const defaultClassDuration = 1.0

// tryPlace runs the full eligibility chain for one candidate at the
// given start time and commits the placement when every check passes.
// A failed check is a normal skip, never an error.
func (r *optimizerRun) tryPlace(candidate models.SlotPerformance, clock, phase string) bool {
	rules := r.rules

	if IsHostedFormat(candidate.ClassFormat) {
		return r.reject("hosted_format")
	}
	if rules.IsTimeRestricted(clock, candidate.Day) {
		return r.reject("time_restricted")
	}
	if !rules.ClassAllowedAtLocation(candidate.ClassFormat, candidate.Location) {
		return r.reject("location_format")
	}
	shift, ok := rules.ShiftOf(clock)
	if !ok {
		return r.reject("dead_zone")
	}
	if r.overlapCount(candidate.Location, candidate.Day, clock, defaultClassDuration) >= rules.MaxParallelClasses(candidate.Location) {
		return r.reject("parallel_cap")
	}
	studio, free := r.svc.availability.FirstFreeStudio(candidate.Location, candidate.Day, clock, defaultClassDuration, r.schedule, "")
	if !free {
		return r.reject("studio_unavailable")
	}
	if r.formatInSlot(candidate.Location, candidate.Day, clock, candidate.ClassFormat) {
		return r.reject("duplicate_format")
	}

	first, last, found := r.bestTeacher(candidate)
	if !found {
		return r.reject("no_teacher")
	}
	teacher := normalizeName(first + " " + last)
	if !r.teacherEligible(teacher, candidate, clock, shift) {
		return false
	}

	placed := models.ScheduledClass{
		ID:               uuid.NewString(),
		Day:              candidate.Day,
		Time:             clock,
		Location:         candidate.Location,
		ClassFormat:      candidate.ClassFormat,
		TeacherFirstName: first,
		TeacherLastName:  last,
		Duration:         "1",
		Participants:     candidate.AvgParticipants,
		Revenue:          candidate.AvgRevenue,
		IsTopPerformer:   candidate.AvgParticipants >= rules.TopPerformerFloor(),
		StudioAssigned:   studio,
	}
	r.schedule = append(r.schedule, placed)

	ledger := r.ledgers[teacher]
	if ledger == nil {
		ledger = newTeacherLedger()
		r.ledgers[teacher] = ledger
	}
	ledger.weeklyHours += defaultClassDuration
	ledger.dailyHours[candidate.Day] += defaultClassDuration
	ledger.dayLocation[candidate.Day] = candidate.Location
	ledger.dayShift[candidate.Day] = shift

	key := shiftKey{Location: candidate.Location, Day: candidate.Day, Shift: shift}
	if r.shiftTrainers[key] == nil {
		r.shiftTrainers[key] = make(map[string]bool)
	}
	r.shiftTrainers[key][teacher] = true

	if r.svc.metrics != nil {
		r.svc.metrics.IncPlacement(phase)
	}
	return true
}

func (r *optimizerRun) bestTeacher(candidate models.SlotPerformance) (string, string, bool) {
	if candidate.Teacher != "" && !r.rules.IsExcludedTeacher(candidate.Teacher) {
		first, last := splitName(candidate.Teacher)
		return first, last, true
	}
	return r.svc.performance.BestTeacherFor(r.history, candidate.ClassFormat, candidate.Location, candidate.Day, candidate.Time)
}

func (r *optimizerRun) teacherEligible(teacher string, candidate models.SlotPerformance, clock string, shift Shift) bool {
	rules := r.rules

	if rules.IsExcludedTeacher(teacher) {
		return r.reject("teacher_excluded")
	}
	if r.hasRoster {
		entry, ok := r.roster[teacher]
		if !ok || !entry.Active {
			return r.reject("not_on_roster")
		}
		if entry.BlackedOut(candidate.Day) {
			return r.reject("blackout_day")
		}
	}

	ledger := r.ledgers[teacher]
	if ledger == nil {
		ledger = newTeacherLedger()
	}
	if ledger.weeklyHours+defaultClassDuration > r.weeklyCap(teacher) {
		return r.reject("weekly_hours")
	}
	if ledger.dailyHours[candidate.Day]+defaultClassDuration > rules.MaxDailyHours() {
		return r.reject("daily_hours")
	}
	if loc, ok := ledger.dayLocation[candidate.Day]; ok && loc != candidate.Location {
		return r.reject("location_per_day")
	}
	if assigned, ok := ledger.dayShift[candidate.Day]; ok && assigned != shift {
		return r.reject("shift_per_day")
	}
	if r.consecutiveCount(teacher, candidate.Day, clock) >= 2 {
		return r.reject("consecutive")
	}

	key := shiftKey{Location: candidate.Location, Day: candidate.Day, Shift: shift}
	set := r.shiftTrainers[key]
	if len(set) >= rules.MaxTrainersPerShift(candidate.Location) && !set[teacher] {
		return r.reject("trainers_per_shift")
	}

	if r.isJunior(teacher) && !rules.JuniorFormatAllowed(candidate.ClassFormat) {
		return r.reject("junior_format")
	}
	return true
}

func (r *optimizerRun) weeklyCap(teacher string) float64 {
	if r.isJunior(teacher) {
		return r.rules.JuniorWeeklyHourCap()
	}
	return r.rules.WeeklyHourCap(teacher)
}

func (r *optimizerRun) isJunior(teacher string) bool {
	if entry, ok := r.roster[teacher]; ok {
		return entry.IsJunior
	}
	return r.rules.IsJuniorTeacher(teacher)
}

// consecutiveCount counts the teacher's classes on the day within the
// configured window around the candidate start.
func (r *optimizerRun) consecutiveCount(teacher, day, clock string) int {
	mins, ok := clockToMinutes(clock)
	if !ok {
		return 0
	}
	window := r.rules.ConsecutiveWindowMins()
	count := 0
	for _, cls := range r.schedule {
		if cls.Day != day || normalizeName(cls.TeacherName()) != teacher {
			continue
		}
		existing, ok := clockToMinutes(cls.Time)
		if !ok {
			continue
		}
		diff := existing - mins
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			count++
		}
	}
	return count
}

// overlapCount counts scheduled classes at the location/day overlapping
// the candidate interval.
func (r *optimizerRun) overlapCount(location, day, clock string, durationHours float64) int {
	start, ok := clockToMinutes(clock)
	if !ok {
		return 0
	}
	end := start + int(durationHours*60)
	count := 0
	for _, cls := range r.schedule {
		if cls.Location != location || cls.Day != day {
			continue
		}
		existing, ok := clockToMinutes(cls.Time)
		if !ok {
			continue
		}
		if intervalsOverlap(start, end, existing, existing+int(cls.DurationHours()*60)) {
			count++
		}
	}
	return count
}

// formatInSlot reports whether the same format already runs within an
// hour of the candidate start at the location/day.
func (r *optimizerRun) formatInSlot(location, day, clock, classFormat string) bool {
	mins, ok := clockToMinutes(clock)
	if !ok {
		return false
	}
	for _, cls := range r.schedule {
		if cls.Location != location || cls.Day != day || cls.ClassFormat != classFormat {
			continue
		}
		existing, ok := clockToMinutes(cls.Time)
		if !ok {
			continue
		}
		diff := existing - mins
		if diff < 0 {
			diff = -diff
		}
		if diff <= 60 {
			return true
		}
	}
	return false
}

func (r *optimizerRun) reject(reason string) bool {
	if r.svc.metrics != nil {
		r.svc.metrics.IncRejection(reason)
	}
	return false
}

func splitName(full string) (string, string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}
