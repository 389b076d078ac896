package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
	"github.com/tristudio/studio-scheduler-api/pkg/export"
	"github.com/tristudio/studio-scheduler-api/pkg/jobs"
)

var timetableHeaders = []string{"Time", "Class", "Teacher", "Studio", "Expected"}

// ExportService renders saved schedules to CSV or PDF in the background.
// Rendering happens on the jobs queue so large PDF generation never
// blocks a request.
type ExportService struct {
	store      scheduleStore
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	queue      *jobs.Queue
	metrics    *MetricsService
	storageDir string
	logger     *zap.Logger
}

type exportPayload struct {
	ScheduleID string
	Format     string
}

func NewExportService(store scheduleStore, cfg config.ExportsConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		store:      store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		metrics:    metrics,
		storageDir: cfg.StorageDir,
		logger:     logger,
	}
	s.queue = jobs.NewQueue("exports", s.process, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue schedules an export job for a saved schedule.
func (s *ExportService) Enqueue(ctx context.Context, scheduleID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if _, _, err := s.store.Find(ctx, scheduleID); err != nil {
		return nil, appErrors.FromError(err)
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "export." + req.Format,
		Payload: exportPayload{ScheduleID: scheduleID, Format: req.Format},
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return &dto.ExportJobResponse{JobID: job.ID, Pending: s.queue.Pending()}, nil
}

// RenderCSV produces the timetable CSV synchronously, used for direct
// downloads of small schedules.
func (s *ExportService) RenderCSV(ctx context.Context, scheduleID string) ([]byte, string, error) {
	saved, classes, err := s.store.Find(ctx, scheduleID)
	if err != nil {
		return nil, "", appErrors.FromError(err)
	}
	data, err := s.csv.Render(timetableDataset(classes))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV")
	}
	return data, fmt.Sprintf("%s.csv", saved.Name), nil
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		// A malformed payload can never succeed; drop it without retry.
		s.logger.Error("export job payload has wrong type", zap.String("job", job.ID))
		return nil
	}

	saved, classes, err := s.store.Find(ctx, payload.ScheduleID)
	if err != nil {
		return fmt.Errorf("load schedule %s for export: %w", payload.ScheduleID, err)
	}

	var rendered []byte
	switch payload.Format {
	case "pdf":
		rendered, err = s.pdf.RenderTimetable(saved.Name, append([]string{"Location"}, timetableHeaders...), timetableDays(classes))
	default:
		rendered, err = s.csv.Render(timetableDataset(classes))
	}
	if err != nil {
		s.metrics.IncExportJob(payload.Format, "failed")
		return fmt.Errorf("render %s export: %w", payload.Format, err)
	}

	path := filepath.Join(s.storageDir, fmt.Sprintf("%s-%s.%s", saved.ID, job.ID, payload.Format))
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		s.metrics.IncExportJob(payload.Format, "failed")
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		s.metrics.IncExportJob(payload.Format, "failed")
		return fmt.Errorf("write export file: %w", err)
	}

	s.metrics.IncExportJob(payload.Format, "ok")
	s.logger.Info("export rendered",
		zap.String("schedule", saved.ID),
		zap.String("format", payload.Format),
		zap.String("path", path),
	)
	return nil
}

func timetableDataset(classes []models.ScheduledClass) export.Dataset {
	sorted := sortedTimetable(classes)
	rows := make([]map[string]string, 0, len(sorted))
	for _, cls := range sorted {
		row := timetableRow(cls)
		row["Day"] = cls.Day
		row["Location"] = cls.Location
		rows = append(rows, row)
	}
	return export.Dataset{
		Headers: append([]string{"Day", "Location"}, timetableHeaders...),
		Rows:    rows,
	}
}

func timetableDays(classes []models.ScheduledClass) []export.TimetableDay {
	sorted := sortedTimetable(classes)
	byDay := make(map[string][]map[string]string)
	for _, cls := range sorted {
		row := timetableRow(cls)
		row["Location"] = cls.Location
		byDay[cls.Day] = append(byDay[cls.Day], row)
	}

	days := make([]export.TimetableDay, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		days = append(days, export.TimetableDay{Day: day, Rows: byDay[day]})
	}
	return days
}

func timetableRow(cls models.ScheduledClass) map[string]string {
	return map[string]string{
		"Time":     cls.Time,
		"Class":    cls.ClassFormat,
		"Teacher":  cls.TeacherName(),
		"Studio":   cls.StudioAssigned,
		"Expected": fmt.Sprintf("%.1f", cls.Participants),
	}
}

func sortedTimetable(classes []models.ScheduledClass) []models.ScheduledClass {
	dayOrder := make(map[string]int, len(models.Weekdays))
	for i, day := range models.Weekdays {
		dayOrder[day] = i
	}
	sorted := make([]models.ScheduledClass, len(classes))
	copy(sorted, classes)
	sort.Slice(sorted, func(i, j int) bool {
		if dayOrder[sorted[i].Day] != dayOrder[sorted[j].Day] {
			return dayOrder[sorted[i].Day] < dayOrder[sorted[j].Day]
		}
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sorted[i].Location < sorted[j].Location
	})
	return sorted
}
