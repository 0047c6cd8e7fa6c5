package tail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tessro/tracklog/internal/core"
)

type fakeSource struct {
	mu     sync.Mutex
	states []*core.RawState
	errs   []error
	calls  int
}

func (f *fakeSource) GetState(ctx context.Context) (*core.RawState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.states) {
		return f.states[i], nil
	}
	return nil, nil
}

func collect() (Handler, <-chan core.RawState) {
	ch := make(chan core.RawState, 64)
	return func(ctx context.Context, s core.RawState) { ch <- s }, ch
}

func waitDone(t *testing.T, w *Watcher) {
	t.Helper()
	done := w.Done()
	if done == nil {
		t.Fatal("Done() = nil, watcher never subscribed")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherDeliversStates(t *testing.T) {
	src := &fakeSource{states: []*core.RawState{
		{TrackID: "a"},
		nil,
		{TrackID: "b", Paused: true},
	}}
	handler, got := collect()
	w := NewWatcher(src, handler, WithInterval(time.Millisecond))

	if err := w.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer w.Unsubscribe()

	for _, want := range []string{"a", "b"} {
		select {
		case s := <-got:
			if s.TrackID != want {
				t.Errorf("TrackID = %q, want %q", s.TrackID, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestWatcherSubscribeIdempotent(t *testing.T) {
	handler, _ := collect()
	w := NewWatcher(&fakeSource{}, handler, WithInterval(time.Hour))

	ctx := context.Background()
	if err := w.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	first := w.Done()
	if err := w.Subscribe(ctx); err != nil {
		t.Fatalf("second Subscribe() error = %v", err)
	}
	if w.Done() != first {
		t.Error("second Subscribe() started another poll loop")
	}

	w.Unsubscribe()
	if w.Subscribed() {
		t.Error("Subscribed() = true after Unsubscribe()")
	}
	w.Unsubscribe()
}

func TestWatcherSubscribeWithoutSource(t *testing.T) {
	w := NewWatcher(nil, func(context.Context, core.RawState) {})
	if err := w.Subscribe(context.Background()); err == nil {
		t.Error("Subscribe() with nil source should fail")
	}
}

func TestWatcherDropsAfterFailures(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{
		errs:   []error{boom, boom, boom},
		states: []*core.RawState{nil, nil, nil, {TrackID: "back"}},
	}
	handler, got := collect()
	w := NewWatcher(src, handler, WithInterval(time.Millisecond), WithMaxFailures(3))

	if err := w.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	waitDone(t, w)

	if w.Subscribed() {
		t.Fatal("Subscribed() = true after repeated failures")
	}

	w.Activated()
	defer w.Unsubscribe()

	select {
	case s := <-got:
		if s.TrackID != "back" {
			t.Errorf("TrackID = %q, want %q", s.TrackID, "back")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Activated() did not resubscribe")
	}
}

func TestWatcherStopsOnContextCancel(t *testing.T) {
	handler, _ := collect()
	w := NewWatcher(&fakeSource{}, handler, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Subscribe(ctx); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	cancel()
	waitDone(t, w)

	// A cancelled parent context must not be revived by the activation signal.
	w.Activated()
	if w.Subscribed() {
		t.Error("Activated() resubscribed with a cancelled context")
	}
}
