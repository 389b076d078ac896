package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

// ClassHistoryRepository manages persistence for imported class records.
type ClassHistoryRepository struct {
	db *sqlx.DB
}

func NewClassHistoryRepository(db *sqlx.DB) *ClassHistoryRepository {
	return &ClassHistoryRepository{db: db}
}

const classRecordColumns = "id, class_format, location, day_of_week, class_time, teacher_first_name, teacher_last_name, participants, total_revenue, duration_hours, created_at"

// ListAll loads the full history. The optimizer always works on the
// complete set; filtering happens in memory during aggregation.
func (r *ClassHistoryRepository) ListAll(ctx context.Context) ([]models.ClassRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM class_history ORDER BY created_at, id", classRecordColumns)
	var records []models.ClassRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list class history: %w", err)
	}
	return records, nil
}

// List returns a filtered page of records along with the total count.
func (r *ClassHistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.ClassRecord, int, error) {
	base := "FROM class_history WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location = $%d", len(args)+1))
		args = append(args, filter.Location)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	if filter.Format != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(class_format) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Format)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY day_of_week, class_time, id LIMIT %d OFFSET %d", classRecordColumns, base, size, offset)
	var records []models.ClassRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class history: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count class history: %w", err)
	}
	return records, total, nil
}

// BulkInsert stores a batch of imported records in one transaction.
// Records without IDs are assigned one. The whole batch commits or none
// of it does.
func (r *ClassHistoryRepository) BulkInsert(ctx context.Context, records []models.ClassRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history import: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO class_history
		(id, class_format, location, day_of_week, class_time, teacher_first_name, teacher_last_name, participants, total_revenue, duration_hours)
		VALUES (:id, :class_format, :location, :day_of_week, :class_time, :teacher_first_name, :teacher_last_name, :participants, :total_revenue, :duration_hours)`

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			return fmt.Errorf("insert class record %s: %w", records[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history import: %w", err)
	}
	return nil
}

// DeleteAll clears the history ahead of a replacing import.
func (r *ClassHistoryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM class_history"); err != nil {
		return fmt.Errorf("clear class history: %w", err)
	}
	return nil
}
