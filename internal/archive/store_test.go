package archive

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC)
	store, err := Open(filepath.Join(t.TempDir(), "reports.db"), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, &now
}

func sampleDoc(name string) *assembler.Document {
	return &assembler.Document{
		Filename:      assembler.Filename(name),
		PDF:           []byte("%PDF-1.3 " + name),
		Pages:         3,
		MissingCharts: []snapshot.ChartID{snapshot.PerformanceOverview},
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Save(ctx, report.Subject{Name: "Jane Doe", Department: "Finance"}, sampleDoc("Jane Doe"))
	require.NoError(t, err)
	_, err = uuid.Parse(rec.ID)
	require.NoError(t, err)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Equal(t, "Jane Doe", got.SubjectName)
	assert.Equal(t, "Finance", got.Department)
	assert.Equal(t, "Employee_Assessment_Report_Jane_Doe.pdf", got.Filename)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, []string{"radar"}, got.MissingCharts)
	assert.True(t, got.CreatedAt.Equal(*now))

	name, pdf, err := store.PDF(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Filename, name)
	assert.Equal(t, []byte("%PDF-1.3 Jane Doe"), pdf)
}

func TestSaveWithNoMissingChartsStoresEmptyList(t *testing.T) {
	store, _ := newTestStore(t)
	doc := sampleDoc("Sam")
	doc.MissingCharts = nil

	rec, err := store.Save(context.Background(), report.Subject{Name: "Sam"}, doc)
	require.NoError(t, err)
	got, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.MissingCharts)
	assert.Empty(t, got.MissingCharts)
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store, now := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"Ana", "Bo", "Cyd"} {
		rec, err := store.Save(ctx, report.Subject{Name: name}, sampleDoc(name))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
		*now = now.Add(time.Minute)
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})

	two, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Equal(t, "Cyd", two[0].SubjectName)
}

func TestUnknownIDIsNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = store.PDF(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchiveSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	store, err := Open(path)
	require.NoError(t, err)
	rec, err := store.Save(context.Background(), report.Subject{Name: "Lee"}, sampleDoc("Lee"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lee", got.SubjectName)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(sqlx.NewDb(db, "sqlite")), mock
}

func TestSaveWrapsInsertError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reports")).
		WillReturnError(errors.New("database is locked"))

	_, err := store.Save(context.Background(), report.Subject{Name: "X"}, sampleDoc("X"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert report: database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRejectsCorruptRow(t *testing.T) {
	store, mock := newMockStore(t)
	rows := sqlmock.NewRows([]string{"id", "subject_name", "department", "filename", "pages", "missing_charts", "created_at"}).
		AddRow("r1", "X", "", "f.pdf", 1, "not json", "2026-01-01T00:00:00Z")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_name")).WithArgs("r1").WillReturnRows(rows)

	_, err := store.Get(context.Background(), "r1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "decode missing charts for r1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWrapsQueryError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_name")).WithArgs(DefaultListLimit).
		WillReturnError(errors.New("disk I/O error"))

	_, err := store.List(context.Background(), -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reports")
	assert.NoError(t, mock.ExpectationsWereMet())
}
