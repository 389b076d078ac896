package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

var teacherCols = []string{"id", "first_name", "last_name", "email", "is_junior", "active", "blackout_days", "created_at", "updated_at"}

func TestTeacherListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows(teacherCols).
			AddRow("t-1", "Asha", "Pillai", "asha@studio.in", false, true, "", now, now).
			AddRow("t-2", "Kabir", "Mehta", "kabir@studio.in", true, true, "Sunday", now, now))

	repo := NewTeacherRepository(db)
	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	require.Equal(t, "Asha Pillai", teachers[0].FullName())
	require.True(t, teachers[1].IsJunior)
	require.True(t, teachers[1].BlackedOut("Sunday"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherListSearchFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE 1=1 AND (LOWER(first_name || ' ' || last_name) LIKE $1 OR LOWER(email) LIKE $1)")).
		WithArgs("%asha%").
		WillReturnRows(sqlmock.NewRows(teacherCols).
			AddRow("t-1", "Asha", "Pillai", "asha@studio.in", false, true, "", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers")).
		WithArgs("%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := NewTeacherRepository(db)
	teachers, total, err := repo.List(context.Background(), models.TeacherFilter{Search: "Asha"})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(teacherCols))

	repo := NewTeacherRepository(db)
	_, err := repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherCreateStampsTimestamps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewTeacherRepository(db)
	created, err := repo.Create(context.Background(), models.Teacher{
		FirstName: "Asha",
		LastName:  "Pillai",
		Email:     "asha@studio.in",
		Active:    true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, now, created.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTeacherRepository(db)
	err := repo.Update(context.Background(), models.Teacher{ID: "missing", FirstName: "Asha"})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewTeacherRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "t-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
