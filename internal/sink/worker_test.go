package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	tlerrors "github.com/tessro/tracklog/internal/errors"
)

func TestWorkerSendsQueuedJobsOnStop(t *testing.T) {
	var mu sync.Mutex
	var sent, acked []string

	w := newWorker(8, slog.Default(),
		func(ctx context.Context, j job) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, j.event.TrackID)
			if j.event.TrackID == "bad" {
				return errors.New("rejected")
			}
			return nil
		},
		func(j job) {
			mu.Lock()
			defer mu.Unlock()
			acked = append(acked, j.event.TrackID)
		})

	if err := w.submit(job{}); !errors.Is(err, tlerrors.ErrSinkClosed) {
		t.Fatalf("submit() before start error = %v, want ErrSinkClosed", err)
	}

	w.start()
	w.start()
	for _, id := range []string{"a", "bad", "c"} {
		if err := w.submit(job{event: testEvent(id, false)}); err != nil {
			t.Fatalf("submit(%s) error = %v", id, err)
		}
	}
	w.stop()
	w.stop()

	if len(sent) != 3 {
		t.Errorf("sent %v, want 3 jobs", sent)
	}
	if len(acked) != 2 || acked[0] != "a" || acked[1] != "c" {
		t.Errorf("acked %v, want [a c]", acked)
	}
	if w.isRunning() {
		t.Error("isRunning() = true after stop")
	}
}

func TestWorkerDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	w := newWorker(1, slog.Default(), func(ctx context.Context, j job) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}, nil)
	w.start()

	// First job occupies the loop, second fills the buffer.
	if err := w.submit(job{}); err != nil {
		t.Fatalf("submit() error = %v", err)
	}
	<-started
	if err := w.submit(job{}); err != nil {
		t.Fatalf("submit() error = %v", err)
	}
	if err := w.submit(job{}); !errors.Is(err, tlerrors.ErrBufferFull) {
		t.Errorf("submit() on full buffer error = %v, want ErrBufferFull", err)
	}

	close(release)
	w.stop()
}
