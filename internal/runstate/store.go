// Package runstate persists the watermark separating runs: a single file
// holding one timestamp. It is the only state with cross-run lifetime.
package runstate

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jserafin20190423/competitor-news/internal/domain"
	"github.com/jserafin20190423/competitor-news/internal/ports"
)

// Store reads and writes the watermark file.
type Store struct {
	path            string
	defaultLookback time.Duration
	maxLookback     time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

var _ ports.RunStore = (*Store)(nil)

// NewStore wires the watermark file path with lookback limits in days.
func NewStore(path string, defaultLookbackDays, maxLookbackDays int, logger *slog.Logger) *Store {
	return &Store{
		path:            path,
		defaultLookback: time.Duration(defaultLookbackDays) * 24 * time.Hour,
		maxLookback:     time.Duration(maxLookbackDays) * 24 * time.Hour,
		logger:          logger,
		now:             time.Now,
	}
}

// Load returns the persisted watermark. When the file is absent or unreadable
// the default lookback applies; a stale watermark is clamped so a run never
// reaches back more than the maximum lookback.
func (s *Store) Load() (domain.RunState, error) {
	fallback := domain.RunState{LastRun: s.now().Add(-s.defaultLookback)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.info("no watermark file, using default lookback", "path", s.path, "since", fallback.LastRun)
			return fallback, nil
		}
		s.warn("cannot read watermark file, using default lookback", "path", s.path, "error", err)
		return fallback, nil
	}

	lastRun, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		s.warn("cannot parse watermark, using default lookback", "path", s.path, "error", err)
		return fallback, nil
	}

	if oldest := s.now().Add(-s.maxLookback); lastRun.Before(oldest) {
		s.info("watermark older than max lookback, clamping", "lastRun", lastRun, "clampedTo", oldest)
		return domain.RunState{LastRun: oldest}, nil
	}

	return domain.RunState{LastRun: lastRun}, nil
}

// Save writes the watermark atomically (tmp file + rename). A failure here is
// fatal to the caller: the next run must not silently skip announcements.
func (s *Store) Save(state domain.RunState) error {
	tmpPath := s.path + ".tmp"

	data := []byte(state.LastRun.Format(time.RFC3339) + "\n")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace watermark: %w", err)
	}

	return nil
}

func (s *Store) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Store) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
