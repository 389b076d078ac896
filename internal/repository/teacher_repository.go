package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

// TeacherRepository manages the optional roster.
type TeacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, first_name, last_name, email, is_junior, active, blackout_days, created_at, updated_at"

// ListActive returns the schedulable roster.
func (r *TeacherRepository) ListActive(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE active = TRUE ORDER BY first_name, last_name", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}

// List returns teachers matching the filter along with the total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY first_name, last_name LIMIT %d OFFSET %d", teacherColumns, base, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("find teacher %s: %w", id, err)
	}
	return &teacher, nil
}

// Create inserts a roster entry and returns it with stamped fields.
func (r *TeacherRepository) Create(ctx context.Context, teacher models.Teacher) (*models.Teacher, error) {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	const query = `INSERT INTO teachers (id, first_name, last_name, email, is_junior, active, blackout_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, query,
		teacher.ID, teacher.FirstName, teacher.LastName, teacher.Email,
		teacher.IsJunior, teacher.Active, teacher.BlackoutDays,
	).Scan(&teacher.CreatedAt, &teacher.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}
	return &teacher, nil
}

// Update rewrites a roster entry.
func (r *TeacherRepository) Update(ctx context.Context, teacher models.Teacher) error {
	const query = `UPDATE teachers SET
		first_name = $1, last_name = $2, email = $3, is_junior = $4, active = $5, blackout_days = $6, updated_at = NOW()
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		teacher.FirstName, teacher.LastName, teacher.Email,
		teacher.IsJunior, teacher.Active, teacher.BlackoutDays, teacher.ID,
	)
	if err != nil {
		return fmt.Errorf("update teacher %s: %w", teacher.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update teacher %s: %w", teacher.ID, err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}

// Delete removes a roster entry.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete teacher %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete teacher %s: %w", id, err)
	}
	if affected == 0 {
		return appErrors.ErrNotFound
	}
	return nil
}
