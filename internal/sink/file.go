package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tessro/tracklog/internal/core"
)

// FileName is the registry name of the file sink.
const FileName = "file"

// FileSink appends events as JSON lines, one file per recording and stream:
// <dir>/<recording>/<source>_<type>.jsonl.
type FileSink struct {
	*Base
	dir string
	now func() time.Time

	mu      sync.Mutex
	files   map[string]*jsonlFile
	written uint64
}

type jsonlFile struct {
	f *os.File
	w *bufio.Writer
}

// NewFile creates a file sink rooted at dir.
func NewFile(dir string, logger *slog.Logger) *FileSink {
	return &FileSink{
		Base:  NewBase(FileName, logger),
		dir:   dir,
		now:   time.Now,
		files: make(map[string]*jsonlFile),
	}
}

// IsConfigured returns true when an output directory is set.
func (s *FileSink) IsConfigured() bool {
	return s.dir != ""
}

// Enable turns the sink on.
func (s *FileSink) Enable() error {
	return s.EnableIf(s.IsConfigured())
}

// Dir returns the root output directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// InitSaving creates the recording directory and opens a file per source.
func (s *FileSink) InitSaving(recording string, sources map[core.SourceIdentity]core.SourceInfo) error {
	s.ResetSources(sources)

	s.mu.Lock()
	defer s.mu.Unlock()
	for src := range sources {
		if _, err := s.openLocked(recording, src); err != nil {
			return s.Fail(err)
		}
	}
	s.Logger().Info("file sink ready", "recording", recording, "dir", s.recordingDir(recording))
	return nil
}

// Deliver appends ev to the stream's file, opening it if needed.
func (s *FileSink) Deliver(ctx context.Context, src core.SourceIdentity, recording string, ev core.TrackEvent) error {
	rec, err := NewRecord(src, recording, ev, s.now())
	if err != nil {
		return err
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.openLocked(recording, src)
	if err != nil {
		return err
	}
	if _, err := out.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := out.w.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	s.written += uint64(len(line) + 1)

	s.MarkDelivered(src)
	return nil
}

// StopSaving flushes and closes every open file.
func (s *FileSink) StopSaving() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for key, out := range s.files {
		if err := out.w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := out.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, key)
	}

	if s.written > 0 {
		s.Logger().Info("file sink stopped", "written", humanize.Bytes(s.written))
	}
	s.written = 0
	s.Reset()
	return firstErr
}

// Path returns the file an event for src under recording is written to.
func (s *FileSink) Path(recording string, src core.SourceIdentity) string {
	name := fmt.Sprintf("%s_%s.jsonl", safeName(src.SourceID), safeName(src.DataType))
	return filepath.Join(s.recordingDir(recording), name)
}

func (s *FileSink) recordingDir(recording string) string {
	return filepath.Join(s.dir, safeName(recording))
}

func (s *FileSink) openLocked(recording string, src core.SourceIdentity) (*jsonlFile, error) {
	path := s.Path(recording, src)
	if out, ok := s.files[path]; ok {
		return out, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create recording dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	out := &jsonlFile{f: f, w: bufio.NewWriter(f)}
	s.files[path] = out
	return out, nil
}

// safeName keeps a recording or source name usable as a single path element.
func safeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
}
