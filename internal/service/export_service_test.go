package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/pkg/config"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
)

func exportClasses() []models.ScheduledClass {
	wednesday := placed("Wednesday", "08:00", "Kenkere House", "Foundations", "Diya", "Rao")
	wednesday.StudioAssigned = "Main Studio"
	monday := placed("Monday", "09:00", "Kenkere House", "Barre 57", "Asha", "Pillai")
	monday.StudioAssigned = "Cycle Studio"
	return []models.ScheduledClass{wednesday, monday}
}

func newExportFixture(t *testing.T, store scheduleStore) *ExportService {
	t.Helper()
	return NewExportService(store, config.ExportsConfig{
		StorageDir:        filepath.Join(t.TempDir(), "exports"),
		WorkerConcurrency: 1,
		WorkerRetries:     1,
	}, nil, zap.NewNop())
}

func TestRenderCSVSortsTimetable(t *testing.T) {
	store := &fakeScheduleStore{classes: exportClasses()}
	svc := newExportFixture(t, store)

	data, filename, err := svc.RenderCSV(context.Background(), "sched-1")
	require.NoError(t, err)
	assert.Equal(t, "week 34.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Day,Location,Time,Class,Teacher,Studio,Expected", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Monday,"), "rows come out in weekday order")
	assert.Contains(t, lines[1], "Asha Pillai")
	assert.Contains(t, lines[1], "Cycle Studio")
	assert.True(t, strings.HasPrefix(lines[2], "Wednesday,"))
}

func TestRenderCSVUnknownSchedule(t *testing.T) {
	store := &fakeScheduleStore{findErr: appErrors.ErrNotFound}
	svc := newExportFixture(t, store)

	_, _, err := svc.RenderCSV(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEnqueueRejectsUnknownSchedule(t *testing.T) {
	store := &fakeScheduleStore{findErr: appErrors.ErrNotFound}
	svc := newExportFixture(t, store)
	svc.Start(context.Background())
	defer svc.Stop()

	_, err := svc.Enqueue(context.Background(), "missing", dto.ExportRequest{Format: "csv"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEnqueueRendersFileInBackground(t *testing.T) {
	store := &fakeScheduleStore{classes: exportClasses()}
	svc := newExportFixture(t, store)
	svc.Start(context.Background())
	defer svc.Stop()

	resp, err := svc.Enqueue(context.Background(), "sched-1", dto.ExportRequest{Format: "csv"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.JobID)

	expected := filepath.Join(svc.storageDir, "sched-1-"+resp.JobID+".csv")
	require.Eventually(t, func() bool {
		_, statErr := os.Stat(expected)
		return statErr == nil
	}, 3*time.Second, 20*time.Millisecond, "export worker writes the rendered file")

	data, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Barre 57")
}

func TestEnqueuePDFRendersDocument(t *testing.T) {
	store := &fakeScheduleStore{classes: exportClasses()}
	svc := newExportFixture(t, store)
	svc.Start(context.Background())
	defer svc.Stop()

	resp, err := svc.Enqueue(context.Background(), "sched-1", dto.ExportRequest{Format: "pdf"})
	require.NoError(t, err)

	expected := filepath.Join(svc.storageDir, "sched-1-"+resp.JobID+".pdf")
	require.Eventually(t, func() bool {
		data, readErr := os.ReadFile(expected)
		return readErr == nil && strings.HasPrefix(string(data), "%PDF")
	}, 5*time.Second, 20*time.Millisecond, "export worker writes a PDF document")
}
