package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xx7Ahmed7xx/videobooth/common"
)

// Entry records the outcome of one recording session.
type Entry struct {
	ID              string
	StartedAt       time.Time
	EndedAt         time.Time
	OutputPath      string
	Encoder         string
	Width           int
	Height          int
	DurationSeconds float64
	SizeBytes       int64
	Kept            bool
	EndReason       string
}

// End reasons recorded in the journal.
const (
	EndReasonOperator   = "operator"
	EndReasonAutoStop   = "auto-stop"
	EndReasonEngineExit = "engine-exit"
)

// Journal defines the interface for the session journal
type Journal interface {
	// Add stores a new session entry
	Add(ctx context.Context, entry *Entry) error

	// GetByID retrieves a session entry by its ID; nil when not found
	GetByID(ctx context.Context, id string) (*Entry, error)

	// List retrieves the most recent session entries, newest first
	List(ctx context.Context, limit int) ([]*Entry, error)
}

// SQLiteJournal implements Journal using SQLite
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal creates a new SQLite-based session journal
func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	j := &SQLiteJournal{db: db}
	if err := j.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return j, nil
}

// createTables ensures that the required tables exist
func (j *SQLiteJournal) createTables() error {
	createSessionsTable := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		output_path TEXT NOT NULL,
		encoder TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		duration_seconds REAL NOT NULL,
		size_bytes INTEGER NOT NULL,
		kept INTEGER NOT NULL,
		end_reason TEXT NOT NULL
	);`

	_, err := j.db.Exec(createSessionsTable)
	return err
}

// Add stores a new session entry, assigning an ID when the entry has none
func (j *SQLiteJournal) Add(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
	INSERT INTO sessions (id, started_at, ended_at, output_path, encoder, width, height, duration_seconds, size_bytes, kept, end_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := j.db.ExecContext(ctx, query,
		entry.ID,
		common.TimeToString(entry.StartedAt),
		common.TimeToString(entry.EndedAt),
		entry.OutputPath,
		entry.Encoder,
		entry.Width,
		entry.Height,
		entry.DurationSeconds,
		entry.SizeBytes,
		common.BoolToInt(entry.Kept),
		entry.EndReason,
	)
	if err != nil {
		return fmt.Errorf("failed to add session entry: %w", err)
	}

	return nil
}

// GetByID retrieves a session entry by its ID
func (j *SQLiteJournal) GetByID(ctx context.Context, id string) (*Entry, error) {
	query := `
	SELECT id, started_at, ended_at, output_path, encoder, width, height, duration_seconds, size_bytes, kept, end_reason
	FROM sessions WHERE id = ?`

	row := j.db.QueryRowContext(ctx, query, id)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session entry by ID: %w", err)
	}

	return entry, nil
}

// List retrieves the most recent session entries, newest first
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT id, started_at, ended_at, output_path, encoder, width, height, duration_seconds, size_bytes, kept, end_reason
	FROM sessions ORDER BY started_at DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(scan func(dest ...any) error) (*Entry, error) {
	entry := &Entry{}
	var startedStr, endedStr string
	var keptInt int

	err := scan(
		&entry.ID, &startedStr, &endedStr, &entry.OutputPath, &entry.Encoder,
		&entry.Width, &entry.Height, &entry.DurationSeconds, &entry.SizeBytes,
		&keptInt, &entry.EndReason,
	)
	if err != nil {
		return nil, err
	}

	entry.StartedAt, err = common.StringToTime(startedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	entry.EndedAt, err = common.StringToTime(endedStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ended_at: %w", err)
	}
	entry.Kept = common.IntToBool(keptInt)

	return entry, nil
}
