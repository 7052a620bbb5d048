// Package archive keeps rendered reports in SQLite so they can be listed
// and downloaded again.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

var ErrNotFound = errors.New("report not found")

const DefaultListLimit = 50

// timeLayout has a fixed-width fraction so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id             TEXT PRIMARY KEY,
	subject_name   TEXT NOT NULL DEFAULT '',
	department     TEXT NOT NULL DEFAULT '',
	filename       TEXT NOT NULL,
	pages          INTEGER NOT NULL DEFAULT 0,
	missing_charts TEXT NOT NULL DEFAULT '[]',
	created_at     TEXT NOT NULL,
	pdf            BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS reports_created_at ON reports (created_at);
`

// Record is the metadata of an archived report.
type Record struct {
	ID            string    `json:"id"`
	SubjectName   string    `json:"subjectName"`
	Department    string    `json:"department"`
	Filename      string    `json:"filename"`
	Pages         int       `json:"pages"`
	MissingCharts []string  `json:"missingCharts"`
	CreatedAt     time.Time `json:"createdAt"`
}

type recordRow struct {
	ID            string `db:"id"`
	SubjectName   string `db:"subject_name"`
	Department    string `db:"department"`
	Filename      string `db:"filename"`
	Pages         int    `db:"pages"`
	MissingCharts string `db:"missing_charts"`
	CreatedAt     string `db:"created_at"`
}

func (r recordRow) record() (Record, error) {
	rec := Record{
		ID:          r.ID,
		SubjectName: r.SubjectName,
		Department:  r.Department,
		Filename:    r.Filename,
		Pages:       r.Pages,
	}
	if err := json.Unmarshal([]byte(r.MissingCharts), &rec.MissingCharts); err != nil {
		return Record{}, fmt.Errorf("decode missing charts for %s: %w", r.ID, err)
	}
	ts, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at for %s: %w", r.ID, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}

// Store is a SQLite-backed report archive. All access goes through a single
// connection.
type Store struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens or creates the archive at dbPath.
func Open(dbPath string, opts ...Option) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return NewWithDB(db, opts...), nil
}

// NewWithDB wraps an existing connection whose schema is already in place.
func NewWithDB(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a rendered document and returns its metadata.
func (s *Store) Save(ctx context.Context, subject report.Subject, doc *assembler.Document) (Record, error) {
	missing := make([]string, 0, len(doc.MissingCharts))
	for _, id := range doc.MissingCharts {
		missing = append(missing, string(id))
	}
	missingJSON, err := json.Marshal(missing)
	if err != nil {
		return Record{}, fmt.Errorf("encode missing charts: %w", err)
	}
	rec := Record{
		ID:            s.newID(),
		SubjectName:   subject.Name,
		Department:    subject.Department,
		Filename:      doc.Filename,
		Pages:         doc.Pages,
		MissingCharts: missing,
		CreatedAt:     s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, subject_name, department, filename, pages, missing_charts, created_at, pdf)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SubjectName, rec.Department, rec.Filename, rec.Pages,
		string(missingJSON), rec.CreatedAt.Format(timeLayout), doc.PDF,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert report: %w", err)
	}
	return rec, nil
}

const recordColumns = `id, subject_name, department, filename, pages, missing_charts, created_at`

// Get returns the metadata of report id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, `SELECT `+recordColumns+` FROM reports WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return row.record()
}

// List returns the newest reports first. A non-positive limit uses
// DefaultListLimit.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+recordColumns+` FROM reports ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// PDF returns the stored file name and document bytes of report id.
func (s *Store) PDF(ctx context.Context, id string) (string, []byte, error) {
	var row struct {
		Filename string `db:"filename"`
		PDF      []byte `db:"pdf"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT filename, pdf FROM reports WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, fmt.Errorf("get pdf %s: %w", id, err)
	}
	return row.Filename, row.PDF, nil
}
