package service

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/repository"
)

// SweepResult summarizes one sweep run
type SweepResult struct {
	Scanned    int           `json:"scanned"`
	Referenced int           `json:"referenced"`
	TooRecent  int           `json:"too_recent"`
	Removed    []string      `json:"removed"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// sweepTarget pairs a variant's file store with the names its rows reference
type sweepTarget struct {
	variant string
	store   FileStore
	names   func(ctx context.Context) ([]string, error)
}

// sweepService removes upload files that no metadata row references. Such
// files are left behind when a row insert fails after the file write.
type sweepService struct {
	targets []sweepTarget
	cfg     config.SweepConfig
	log     zerolog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
	mu      sync.Mutex
	// serializes sweep runs between the ticker and manual invocations
	runMu sync.Mutex
}

func newSweepService(repos *repository.Repositories, stores Stores, cfg config.SweepConfig, log zerolog.Logger) *sweepService {
	return &sweepService{
		targets: []sweepTarget{
			{variant: VariantNews, store: stores.News, names: repos.News.FileNames},
			{variant: VariantConvention, store: stores.Convention, names: repos.Convention.FileNames},
		},
		cfg: cfg,
		log: log.With().Str("service", "sweeper").Logger(),
	}
}

// Start runs the sweeper every cfg.Interval until ctx is cancelled or Stop
// is called. It blocks; run it in its own goroutine.
func (s *sweepService) Start(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		s.log.Info().Msg("Orphan sweeper disabled")
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	defer close(done)

	s.log.Info().
		Dur("interval", s.cfg.Interval).
		Dur("grace", s.cfg.Grace).
		Msg("Orphan sweeper started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Orphan sweeper stopping")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error().Err(err).Msg("Orphan sweep failed")
			}
		}
	}
}

// Stop stops the background sweeper and waits for a running sweep to finish
func (s *sweepService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
	s.log.Info().Msg("Orphan sweeper stopped")
}

// SweepOnce removes every stored file older than the grace period that is
// not referenced by a row of its variant. References are collected for all
// variants before anything is removed.
func (s *sweepService) SweepOnce(ctx context.Context) (*SweepResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	result := &SweepResult{Removed: []string{}}

	referenced := make([]map[string]bool, len(s.targets))
	for i, target := range s.targets {
		names, err := target.names(ctx)
		if err != nil {
			return nil, &PersistenceError{Op: "list " + target.variant + " files", Err: err}
		}
		referenced[i] = make(map[string]bool, len(names))
		for _, name := range names {
			referenced[i][name] = true
		}
	}

	cutoff := start.Add(-s.cfg.Grace)
	for i, target := range s.targets {
		if err := s.sweepTarget(ctx, target, referenced[i], cutoff, result); err != nil {
			return result, err
		}
	}

	result.Duration = time.Since(start)
	s.log.Info().
		Int("scanned", result.Scanned).
		Int("removed", len(result.Removed)).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Orphan sweep completed")

	return result, nil
}

func (s *sweepService) sweepTarget(ctx context.Context, target sweepTarget, referenced map[string]bool, cutoff time.Time, result *SweepResult) error {
	files, err := target.store.List()
	if err != nil {
		return &StorageError{Op: "list " + target.variant, Err: err}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Scanned++

		if referenced[f.Name] {
			result.Referenced++
			continue
		}
		// Files younger than the grace period may belong to an upload whose
		// row insert has not happened yet.
		if f.ModTime.After(cutoff) {
			result.TooRecent++
			continue
		}

		if err := target.store.Remove(f.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Failed++
			s.log.Warn().Err(err).Str("variant", target.variant).Str("file", f.Name).Msg("Failed to remove orphaned file")
			continue
		}
		orphansRemovedTotal.WithLabelValues(target.variant).Inc()
		result.Removed = append(result.Removed, f.Name)
		s.log.Info().
			Str("variant", target.variant).
			Str("file", f.Name).
			Int64("size_bytes", f.Size).
			Msg("Removed orphaned file")
	}
	return nil
}
