package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/tessro/tracklog/internal/core"
)

// PostgresName is the registry name of the Postgres sink.
const PostgresName = "postgres"

const insertPostgres = `INSERT INTO track_events (
	event_id, source_id, data_type, recording, delivered_at, captured_at,
	track_id, title, artist, album, duration_ms, paused, position_ms, playback_rate
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (event_id) DO NOTHING`

// PostgresConfig holds connection settings for the Postgres sink.
type PostgresConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	BufferSize int
}

// ConnectionString returns a lib/pq key/value connection string.
func (cfg PostgresConfig) ConnectionString() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, sslMode,
	)

	if cfg.Password != "" {
		connStr += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return connStr
}

// PostgresSink stores events in Postgres from a background worker.
type PostgresSink struct {
	*Base
	cfg    PostgresConfig
	now    func() time.Time
	worker *worker

	mu sync.Mutex
	db *sql.DB
}

// NewPostgres creates a Postgres sink.
func NewPostgres(cfg PostgresConfig, logger *slog.Logger) *PostgresSink {
	s := &PostgresSink{
		Base: NewBase(PostgresName, logger),
		cfg:  cfg,
		now:  time.Now,
	}
	s.worker = newWorker(cfg.BufferSize, s.Logger(), s.insert, func(j job) { s.MarkDelivered(j.src) })
	return s
}

// IsConfigured returns true when host, user and database name are set.
func (s *PostgresSink) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.User != "" && s.cfg.DBName != ""
}

// Enable turns the sink on.
func (s *PostgresSink) Enable() error {
	return s.EnableIf(s.IsConfigured())
}

// InitSaving connects, migrates and starts the worker.
func (s *PostgresSink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	s.ResetSources(sources)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if _, err := s.connect(ctx); err != nil {
		return s.Fail(err)
	}
	s.worker.start()
	s.Logger().Info("postgres sink ready", "recording", recording, "host", s.cfg.Host, "db", s.cfg.DBName)
	return nil
}

// Deliver queues ev for insertion.
func (s *PostgresSink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	s.worker.start()
	return s.worker.submit(job{src: src, recording: recording, event: ev, queuedAt: s.now()})
}

// StopSaving drains queued events and closes the connection pool.
func (s *PostgresSink) StopSaving() error {
	s.worker.stop()
	s.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *PostgresSink) connect(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("postgres", s.cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migratePostgres(db); err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return db, nil
}

func (s *PostgresSink) insert(ctx context.Context, j job) error {
	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	rec, err := NewRecord(j.src, j.recording, j.event, j.queuedAt)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, insertPostgres,
		rec.EventID, rec.SourceID, rec.DataType, rec.Recording,
		time.UnixMilli(rec.DeliveredAt).UTC(), time.UnixMilli(rec.CapturedAt).UTC(),
		rec.TrackID, rec.Title, rec.Artist, rec.Album, rec.DurationMs, rec.Paused, rec.PositionMs, rec.PlaybackRate)
	if err != nil {
		return fmt.Errorf("insert track event: %w", err)
	}
	return nil
}
