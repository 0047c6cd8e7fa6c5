package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
)

const (
	defaultBufferSize  = 64
	defaultSendTimeout = 10 * time.Second

	// initTimeout bounds how long InitSaving waits for a network sink to
	// connect.
	initTimeout = 5 * time.Second
)

type job struct {
	src       core.SourceIdentity
	recording string
	event     core.TrackEvent
	queuedAt  time.Time
}

// worker serializes a sink's I/O on its own goroutine so Deliver returns
// without waiting for the network. A full buffer drops the event.
type worker struct {
	send    func(ctx context.Context, j job) error
	onSent  func(j job)
	logger  *slog.Logger
	size    int
	timeout time.Duration

	mu      sync.RWMutex
	jobs    chan job
	running bool
	wg      sync.WaitGroup
}

func newWorker(size int, logger *slog.Logger, send func(context.Context, job) error, onSent func(job)) *worker {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &worker{
		send:    send,
		onSent:  onSent,
		logger:  logger,
		size:    size,
		timeout: defaultSendTimeout,
	}
}

// start launches the worker goroutine if it is not already running.
func (w *worker) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.jobs = make(chan job, w.size)
	w.running = true
	w.wg.Add(1)
	go w.loop(w.jobs)
}

// submit enqueues a job without blocking.
func (w *worker) submit(j job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.running {
		return tlerrors.ErrSinkClosed
	}
	select {
	case w.jobs <- j:
		return nil
	default:
		return tlerrors.ErrBufferFull
	}
}

// stop closes the queue and waits for queued jobs to be sent.
func (w *worker) stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *worker) isRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *worker) loop(jobs <-chan job) {
	defer w.wg.Done()
	for j := range jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.send(ctx, j)
		cancel()
		if err != nil {
			w.logger.Error("deliver event",
				"err", tlerrors.ErrSinkDelivery,
				"cause", err,
				"source", j.src.String(),
				"track_id", j.event.TrackID)
			continue
		}
		if w.onSent != nil {
			w.onSent(j)
		}
	}
}
