package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tessro/tracklog/internal/core"
)

// SQLiteName is the registry name of the SQLite sink.
const SQLiteName = "sqlite"

const insertSQLite = `INSERT OR IGNORE INTO track_events (
	event_id, source_id, data_type, recording, delivered_at, captured_at,
	track_id, title, artist, album, duration_ms, paused, position_ms, playback_rate
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink stores events in a local SQLite database.
type SQLiteSink struct {
	*Base
	path string
	now  func() time.Time

	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a SQLite sink for the database at path.
func NewSQLite(path string, logger *slog.Logger) *SQLiteSink {
	return &SQLiteSink{
		Base: NewBase(SQLiteName, logger),
		path: path,
		now:  time.Now,
	}
}

// IsConfigured returns true when a database path is set.
func (s *SQLiteSink) IsConfigured() bool {
	return s.path != ""
}

// Enable turns the sink on.
func (s *SQLiteSink) Enable() error {
	return s.EnableIf(s.IsConfigured())
}

// InitSaving opens the database and applies migrations.
func (s *SQLiteSink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	s.ResetSources(sources)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.openLocked(); err != nil {
		return s.Fail(err)
	}
	s.Logger().Info("sqlite sink ready", "recording", recording, "path", s.path)
	return nil
}

// Deliver inserts ev. Redelivering the same event is ignored.
func (s *SQLiteSink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	rec, err := NewRecord(src, recording, ev, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openLocked()
	if err != nil {
		return err
	}

	paused := 0
	if rec.Paused {
		paused = 1
	}
	_, err = db.ExecContext(ctx, insertSQLite,
		rec.EventID, rec.SourceID, rec.DataType, rec.Recording, rec.DeliveredAt, rec.CapturedAt,
		rec.TrackID, rec.Title, rec.Artist, rec.Album, rec.DurationMs, paused, rec.PositionMs, rec.PlaybackRate)
	if err != nil {
		return fmt.Errorf("insert track event: %w", err)
	}

	s.MarkDelivered(src)
	return nil
}

// StopSaving closes the database.
func (s *SQLiteSink) StopSaving() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Reset()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Count returns the number of stored events for recording.
func (s *SQLiteSink) Count(ctx context.Context, recording string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openLocked()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM track_events WHERE recording = ?`, recording).Scan(&n)
	return n, err
}

func (s *SQLiteSink) openLocked() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return db, nil
}
