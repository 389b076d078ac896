package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

// ScheduleRepository persists accepted weekly timetables. A saved
// schedule and its classes are written in one transaction so a snapshot
// is never half-stored.
type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Save stores the schedule header plus all classes atomically and
// returns the saved snapshot metadata.
func (r *ScheduleRepository) Save(ctx context.Context, name, source string, classes []models.ScheduledClass) (*models.SavedSchedule, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin schedule save: %w", err)
	}
	defer tx.Rollback()

	saved := models.SavedSchedule{ID: uuid.NewString(), Name: name, Source: source}
	const headerQuery = `INSERT INTO schedules (id, name, source) VALUES ($1, $2, $3) RETURNING created_at, updated_at`
	if err := tx.QueryRowxContext(ctx, headerQuery, saved.ID, saved.Name, saved.Source).Scan(&saved.CreatedAt, &saved.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert schedule header: %w", err)
	}

	const classQuery = `INSERT INTO schedule_classes
		(id, schedule_id, day_of_week, class_time, location, class_format, teacher_first_name, teacher_last_name, duration, participants, revenue, is_top_performer, studio_assigned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, cls := range classes {
		if cls.ID == "" {
			cls.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, classQuery,
			cls.ID, saved.ID, cls.Day, cls.Time, cls.Location, cls.ClassFormat,
			cls.TeacherFirstName, cls.TeacherLastName, cls.Duration,
			cls.Participants, cls.Revenue, cls.IsTopPerformer, cls.StudioAssigned,
		); err != nil {
			return nil, fmt.Errorf("insert schedule class %s: %w", cls.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit schedule save: %w", err)
	}
	return &saved, nil
}

// List returns saved schedule headers, newest first.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.SavedSchedule, error) {
	const query = `SELECT id, name, source, created_at, updated_at FROM schedules ORDER BY created_at DESC`
	var schedules []models.SavedSchedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Find loads one saved schedule with its classes.
func (r *ScheduleRepository) Find(ctx context.Context, id string) (*models.SavedSchedule, []models.ScheduledClass, error) {
	const headerQuery = `SELECT id, name, source, created_at, updated_at FROM schedules WHERE id = $1`
	var saved models.SavedSchedule
	if err := r.db.GetContext(ctx, &saved, headerQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.ErrNotFound
		}
		return nil, nil, fmt.Errorf("find schedule %s: %w", id, err)
	}

	const classQuery = `SELECT id, day_of_week, class_time, location, class_format, teacher_first_name, teacher_last_name, duration, participants, revenue, is_top_performer, studio_assigned
		FROM schedule_classes WHERE schedule_id = $1 ORDER BY day_of_week, class_time, id`
	var classes []models.ScheduledClass
	if err := r.db.SelectContext(ctx, &classes, classQuery, id); err != nil {
		return nil, nil, fmt.Errorf("load schedule classes %s: %w", id, err)
	}
	return &saved, classes, nil
}

// UpdateClass applies a manual edit to one class of a saved schedule.
func (r *ScheduleRepository) UpdateClass(ctx context.Context, scheduleID, classID string, cls models.ScheduledClass) error {
	const query = `UPDATE schedule_classes SET
		day_of_week = $1, class_time = $2, location = $3, class_format = $4,
		teacher_first_name = $5, teacher_last_name = $6, duration = $7, studio_assigned = $8
		WHERE id = $9 AND schedule_id = $10`
	res, err := r.db.ExecContext(ctx, query,
		cls.Day, cls.Time, cls.Location, cls.ClassFormat,
		cls.TeacherFirstName, cls.TeacherLastName, cls.Duration, cls.StudioAssigned,
		classID, scheduleID,
	)
	if err != nil {
		return fmt.Errorf("update schedule class %s: %w", classID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule class %s: %w", classID, err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// DeleteClass removes one class from a saved schedule.
func (r *ScheduleRepository) DeleteClass(ctx context.Context, scheduleID, classID string) error {
	const query = `DELETE FROM schedule_classes WHERE id = $1 AND schedule_id = $2`
	res, err := r.db.ExecContext(ctx, query, classID, scheduleID)
	if err != nil {
		return fmt.Errorf("delete schedule class %s: %w", classID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule class %s: %w", classID, err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// Delete removes a saved schedule and its classes.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete schedule %s: %w", id, err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
