package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tristudio/studio-scheduler-api/internal/models"
)

type fakeHistoryStore struct {
	records  []models.ClassRecord
	inserted []models.ClassRecord
	cleared  bool

	listErr   error
	insertErr error
	deleteErr error
}

func (f *fakeHistoryStore) ListAll(context.Context) ([]models.ClassRecord, error) {
	return f.records, f.listErr
}

func (f *fakeHistoryStore) List(context.Context, models.HistoryFilter) ([]models.ClassRecord, int, error) {
	return f.records, len(f.records), f.listErr
}

func (f *fakeHistoryStore) BulkInsert(_ context.Context, records []models.ClassRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func (f *fakeHistoryStore) DeleteAll(context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.cleared = true
	return nil
}

func newHistoryFixture(store *fakeHistoryStore) *HistoryService {
	return NewHistoryService(store, nil, zap.NewNop())
}

func TestImportCSVParsesCanonicalHeaders(t *testing.T) {
	store := &fakeHistoryStore{}
	svc := newHistoryFixture(store)

	csvBody := strings.Join([]string{
		"Class name,Location,Day of the week,Class time,Teacher first name,Teacher last name,Checked in,Total Revenue",
		"Barre 57,Kenkere House,Monday,09:00,Asha,Pillai,12,6000",
		"Mat 57,Kenkere House,Tuesday,10:00,Diya,Rao,8,4000",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	assert.Zero(t, summary.Skipped)
	require.Len(t, store.inserted, 2)

	first := store.inserted[0]
	assert.Equal(t, "Barre 57", first.ClassFormat)
	assert.Equal(t, "Monday", first.Day)
	assert.Equal(t, "Asha Pillai", first.TeacherName())
	assert.InEpsilon(t, 12.0, first.Participants, 1e-9)
	assert.InEpsilon(t, 6000.0, first.TotalRevenue, 1e-9)
	assert.InEpsilon(t, 1.0, first.DurationHours, 1e-9, "missing duration defaults to one hour")
	assert.False(t, store.cleared)
}

func TestImportCSVAcceptsAliasedHeadersAndFullNames(t *testing.T) {
	store := &fakeHistoryStore{}
	svc := newHistoryFixture(store)

	csvBody := strings.Join([]string{
		"Cleaned Class,Location,Day,Time,Teacher Name,Participants,Revenue,Duration",
		`Power Cycle,"Supreme HQ, Bandra",Monday,08:00,Kabir Mehta,15,"7,500",1`,
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	require.Len(t, store.inserted, 1)

	rec := store.inserted[0]
	assert.Equal(t, "Supreme HQ, Bandra", rec.Location)
	assert.Equal(t, "Kabir", rec.TeacherFirstName, "full names split into first and last")
	assert.Equal(t, "Mehta", rec.TeacherLastName)
	assert.InEpsilon(t, 7500.0, rec.TotalRevenue, 1e-9, "thousand separators are stripped")
}

func TestImportCSVStripsByteOrderMark(t *testing.T) {
	store := &fakeHistoryStore{}
	svc := newHistoryFixture(store)

	csvBody := strings.Join([]string{
		"\uFEFFClass name,Location,Day,Time,Participants",
		"Barre 57,Kenkere House,Monday,09:00,12",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "Barre 57", store.inserted[0].ClassFormat)
}

func TestImportCSVSkipsMalformedRows(t *testing.T) {
	store := &fakeHistoryStore{}
	svc := newHistoryFixture(store)

	csvBody := strings.Join([]string{
		"Class name,Location,Day,Time,Participants",
		"Barre 57,Kenkere House,Monday,09:00,12",
		",Kenkere House,Monday,09:00,12",
		"Barre 57,Kenkere House,Someday,09:00,12",
		"Barre 57,Kenkere House,Monday,9,12",
	}, "\n")

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 3, summary.Skipped)
}

func TestImportCSVRejectsMissingClassColumn(t *testing.T) {
	svc := newHistoryFixture(&fakeHistoryStore{})

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("Location,Day\nKenkere House,Monday"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class name column")
}

func TestImportCSVReplaceClearsPreviousHistory(t *testing.T) {
	store := &fakeHistoryStore{}
	svc := newHistoryFixture(store)

	csvBody := "Class name,Location,Day,Time\nBarre 57,Kenkere House,Monday,09:00"
	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), true)
	require.NoError(t, err)
	assert.True(t, store.cleared)
}

func TestImportCSVReplaceFailureAborts(t *testing.T) {
	store := &fakeHistoryStore{deleteErr: errors.New("locked")}
	svc := newHistoryFixture(store)

	csvBody := "Class name,Location,Day,Time\nBarre 57,Kenkere House,Monday,09:00"
	_, err := svc.ImportCSV(context.Background(), strings.NewReader(csvBody), true)
	require.Error(t, err)
	assert.Empty(t, store.inserted, "nothing is written when the clear fails")
}

func TestListAllRecordsWrapsStoreFailure(t *testing.T) {
	store := &fakeHistoryStore{listErr: errors.New("connection refused")}
	svc := newHistoryFixture(store)

	_, err := svc.ListAllRecords(context.Background())
	require.Error(t, err)
}
