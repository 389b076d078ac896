package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

type historyStore interface {
	ListAll(ctx context.Context) ([]models.ClassRecord, error)
	List(ctx context.Context, filter models.HistoryFilter) ([]models.ClassRecord, int, error)
	BulkInsert(ctx context.Context, records []models.ClassRecord) error
	DeleteAll(ctx context.Context) error
}

// HistoryService imports and serves the attendance history that drives
// all scheduling decisions. Malformed CSV rows are counted and skipped;
// only an unreadable file or a failed write is an error.
type HistoryService struct {
	store  historyStore
	cache  *CacheService
	logger *zap.Logger
}

func NewHistoryService(store historyStore, cache *CacheService, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{store: store, cache: cache, logger: logger}
}

// List returns a filtered page of records with pagination metadata.
func (s *HistoryService) List(ctx context.Context, filter models.HistoryFilter) ([]models.ClassRecord, int, error) {
	records, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class history")
	}
	return records, total, nil
}

// ListAllRecords loads the full history for aggregation endpoints.
func (s *HistoryService) ListAllRecords(ctx context.Context) ([]models.ClassRecord, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class history")
	}
	return records, nil
}

// ImportCSV parses the upload and stores the usable rows. When replace
// is set the previous history is cleared first. Derived performance
// caches are invalidated on success.
func (s *HistoryService) ImportCSV(ctx context.Context, r io.Reader, replace bool) (*dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read CSV header")
	}
	columns := mapColumns(header)
	if _, ok := columns["classformat"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "CSV is missing a class name column")
	}

	summary := &dto.ImportSummary{}
	var records []models.ClassRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A ragged or unquotable row is data noise, not a fatal file.
			summary.Skipped++
			continue
		}
		record := rowToRecord(row, columns)
		if !record.Valid() {
			summary.Skipped++
			continue
		}
		records = append(records, record)
	}

	if replace {
		if err := s.store.DeleteAll(ctx); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous history")
		}
	}
	if err := s.store.BulkInsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported history")
	}
	summary.Imported = len(records)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "perf:*"); err != nil {
			s.logger.Warn("failed to invalidate performance cache after import", zap.Error(err))
		}
	}
	s.logger.Info("class history imported",
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("replace", replace),
	)
	return summary, nil
}

// Header spellings seen across exports of the attendance system.
var columnAliases = map[string]string{
	"class name":         "classformat",
	"class format":       "classformat",
	"cleaned class":      "classformat",
	"location":           "location",
	"day of the week":    "day",
	"day":                "day",
	"class time":         "time",
	"time":               "time",
	"teacher first name": "firstname",
	"first name":         "firstname",
	"teacher last name":  "lastname",
	"last name":          "lastname",
	"teacher name":       "fullname",
	"participants":       "participants",
	"checked in":         "participants",
	"total revenue":      "revenue",
	"revenue":            "revenue",
	"duration":           "duration",
	"duration hours":     "duration",
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := columnAliases[key]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func rowToRecord(row []string, columns map[string]int) models.ClassRecord {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	number := func(name string) float64 {
		raw := strings.ReplaceAll(field(name), ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0
		}
		return v
	}

	record := models.ClassRecord{
		ClassFormat:      field("classformat"),
		Location:         field("location"),
		Day:              field("day"),
		Time:             field("time"),
		TeacherFirstName: field("firstname"),
		TeacherLastName:  field("lastname"),
		Participants:     number("participants"),
		TotalRevenue:     number("revenue"),
		DurationHours:    number("duration"),
	}
	if record.TeacherFirstName == "" && record.TeacherLastName == "" {
		first, last := splitName(field("fullname"))
		record.TeacherFirstName = first
		record.TeacherLastName = last
	}
	if record.DurationHours <= 0 {
		record.DurationHours = 1
	}
	return record
}
