package sink

import (
	"errors"
	"log/slog"

	"github.com/tessro/tracklog/internal/core"
	tlerrors "github.com/tessro/tracklog/internal/errors"
)

// Registry is the fixed set of sinks known at startup plus the display sink.
// Membership never changes after construction.
type Registry struct {
	display Display
	sinks   []Sink
	logger  *slog.Logger
}

// NewRegistry creates a registry. Sinks are delivered to in the given order.
func NewRegistry(display Display, logger *slog.Logger, sinks ...Sink) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		display: display,
		sinks:   append([]Sink(nil), sinks...),
		logger:  logger,
	}
}

// Display returns the display sink, which may be nil.
func (r *Registry) Display() Display {
	return r.display
}

// Sinks returns the delivery sinks in registration order.
func (r *Registry) Sinks() []Sink {
	return append([]Sink(nil), r.sinks...)
}

// Get returns the sink with the given name, including the display sink.
func (r *Registry) Get(name string) (Sink, bool) {
	for _, s := range r.all() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// ForEachEnabled calls fn for each enabled delivery sink in order.
func (r *Registry) ForEachEnabled(fn func(Sink)) {
	for _, s := range r.sinks {
		if s.Enabled() {
			fn(s)
		}
	}
}

// EnabledCount returns the number of enabled delivery sinks.
func (r *Registry) EnabledCount() int {
	n := 0
	r.ForEachEnabled(func(Sink) { n++ })
	return n
}

// EnableConfigured enables every configured sink. Unconfigured sinks are
// skipped and reported; they never abort startup.
func (r *Registry) EnableConfigured() []error {
	var skipped []error
	for _, s := range r.all() {
		if !s.IsConfigured() {
			err := tlerrors.NewSinkError(s.Name(), tlerrors.ErrNotConfigured)
			r.logger.Warn("skipping sink", "sink", s.Name(), "err", err)
			skipped = append(skipped, err)
			continue
		}
		if err := s.Enable(); err != nil {
			r.logger.Warn("enable sink", "sink", s.Name(), "err", err)
			skipped = append(skipped, err)
		}
	}
	return skipped
}

// InitSaving prepares every enabled sink for a recording. A sink that fails
// does not stop the others.
func (r *Registry) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	var errs []error
	for _, s := range r.all() {
		if !s.Enabled() {
			continue
		}
		if err := s.InitSaving(recording, sources); err != nil {
			errs = append(errs, tlerrors.NewSinkError(s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// StopSaving stops every sink, enabled or not.
func (r *Registry) StopSaving() error {
	var errs []error
	for _, s := range r.all() {
		if err := s.StopSaving(); err != nil {
			errs = append(errs, tlerrors.NewSinkError(s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) all() []Sink {
	all := make([]Sink, 0, len(r.sinks)+1)
	if r.display != nil {
		all = append(all, r.display)
	}
	return append(all, r.sinks...)
}
