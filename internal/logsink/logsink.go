// Package logsink stores the combined output of every executed command for a
// single run. Output is appended to an on-disk artifact that outlives the
// process, and mirrored in memory so the dashboard can tail the last lines.
package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/upkeep-sh/upkeep/internal/log"
)

// SinkConfig is the configuration for a log sink.
type SinkConfig struct {
	// Path is the on-disk location of the run log artifact.
	Path   string
	Logger log.Logger
}

func (c *SinkConfig) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("log path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "logsink.Sink"})
	return nil
}

// Sink is an append-only log store for one run.
//
// The runner is the only writer, the renderer reads concurrently. Readers
// always see a prefix consistent with a past write boundary. The file is
// never truncated and is left on disk after the process exits.
type Sink struct {
	mu      sync.RWMutex
	file    *os.File
	path    string
	lines   []string
	partial string
	logger  log.Logger
}

// NewSink creates the log artifact (and its directory) and returns the sink.
func NewSink(cfg SinkConfig) (*Sink, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not create log file: %w", err)
	}

	cfg.Logger.Debugf("Log sink created at %s", cfg.Path)

	return &Sink{
		file:   file,
		path:   cfg.Path,
		logger: cfg.Logger,
	}, nil
}

// Write appends raw command output to the sink. It implements io.Writer so
// command stdout/stderr can stream straight into it.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("could not append to log file: %w", err)
	}

	s.partial += string(p)
	for {
		idx := strings.IndexByte(s.partial, '\n')
		if idx < 0 {
			break
		}
		s.lines = append(s.lines, s.partial[:idx])
		s.partial = s.partial[idx+1:]
	}

	return n, nil
}

// TailLines returns the last n lines currently present, fewer if the sink
// has fewer. A trailing unterminated line counts as a line.
func (s *Sink) TailLines(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return nil
	}

	lines := s.lines
	if s.partial != "" {
		lines = append(lines[:len(lines):len(lines)], s.partial)
	}

	if len(lines) <= n {
		return append([]string{}, lines...)
	}
	return append([]string{}, lines[len(lines)-n:]...)
}

// Path returns the on-disk location of the log artifact.
func (s *Sink) Path() string { return s.path }

// Close closes the underlying file. The artifact is kept on disk.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.file.Close()
}
