package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/tessro/tracklog/internal/core"
)

// RedisName is the registry name of the Redis sink.
const RedisName = "redis"

// RedisConfig holds connection settings for the Redis sink.
type RedisConfig struct {
	Host       string
	Port       int
	Password   string
	DB         int
	Prefix     string
	BufferSize int
}

// Addr returns host:port.
func (cfg RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Channel returns the pub/sub channel events for src are published on.
func (cfg RedisConfig) Channel(src core.SourceIdentity) string {
	return fmt.Sprintf("%s:%s:%s", cfg.prefix(), src.SourceID, src.DataType)
}

// LastKey returns the key holding the most recent event for src.
func (cfg RedisConfig) LastKey(src core.SourceIdentity) string {
	return cfg.Channel(src) + ":last"
}

func (cfg RedisConfig) prefix() string {
	if cfg.Prefix == "" {
		return "tracklog"
	}
	return cfg.Prefix
}

// RedisSink publishes events on a Redis channel and keeps the latest event
// per stream under a key.
type RedisSink struct {
	*Base
	cfg    RedisConfig
	now    func() time.Time
	worker *worker

	// initTimeout bounds the connection attempts made by InitSaving.
	initTimeout time.Duration

	mu     sync.Mutex
	client *redislib.Client
}

// NewRedis creates a Redis sink.
func NewRedis(cfg RedisConfig, logger *slog.Logger) *RedisSink {
	s := &RedisSink{
		Base:        NewBase(RedisName, logger),
		cfg:         cfg,
		now:         time.Now,
		initTimeout: initTimeout,
	}
	s.worker = newWorker(cfg.BufferSize, s.Logger(), s.publish, func(j job) { s.MarkDelivered(j.src) })
	return s
}

// IsConfigured returns true when host and port are set.
func (s *RedisSink) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Port > 0
}

// Enable turns the sink on.
func (s *RedisSink) Enable() error {
	return s.EnableIf(s.IsConfigured())
}

// InitSaving connects to Redis and starts the worker.
func (s *RedisSink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	s.ResetSources(sources)

	ctx, cancel := context.WithTimeout(context.Background(), s.initTimeout)
	defer cancel()
	if _, err := s.connect(ctx); err != nil {
		return s.Fail(err)
	}
	s.worker.start()
	s.Logger().Info("redis sink ready", "recording", recording, "addr", s.cfg.Addr())
	return nil
}

// Deliver queues ev for publishing.
func (s *RedisSink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	s.worker.start()
	return s.worker.submit(job{src: src, recording: recording, event: ev, queuedAt: s.now()})
}

// StopSaving drains queued events and closes the client.
func (s *RedisSink) StopSaving() error {
	s.worker.stop()
	s.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

// connect pings with exponential backoff before handing out the client.
func (s *RedisSink) connect(ctx context.Context) (*redislib.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}

	client := redislib.NewClient(&redislib.Options{
		Addr:     s.cfg.Addr(),
		Password: s.cfg.Password,
		DB:       s.cfg.DB,
	})

	attempts := 5
	backoff := 200 * time.Millisecond

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			s.client = client
			return client, nil
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, fmt.Errorf("redis ping %s: %w", s.cfg.Addr(), err)
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis ping %s: %w", s.cfg.Addr(), err)
}

func (s *RedisSink) publish(ctx context.Context, j job) error {
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	rec, err := NewRecord(j.src, j.recording, j.event, j.queuedAt)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, s.cfg.LastKey(j.src), payload, 0)
	pipe.Publish(ctx, s.cfg.Channel(j.src), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish track event: %w", err)
	}
	return nil
}
