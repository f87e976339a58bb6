package rag

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/loomware/agentcore/internal/obslog"
)

// Scheduler runs a Syncer on a cron schedule, persisting the rolling
// known-versions list in memory between passes. A caller who needs
// durable known-versions across restarts should read Known/store it
// externally after each RunOnce.
type Scheduler struct {
	syncer *Syncer
	logger obslog.Logger
	cron   *cron.Cron

	mu    sync.Mutex
	known []DocumentVersion
	last  SyncResult
}

// NewScheduler builds a Scheduler over syncer. logger defaults to a no-op
// if nil.
func NewScheduler(syncer *Syncer, logger obslog.Logger) *Scheduler {
	if logger == nil {
		logger = obslog.Noop{}
	}
	return &Scheduler{syncer: syncer, logger: logger, cron: cron.New()}
}

// RunOnce performs a single sync pass immediately, updating the
// scheduler's known-versions state.
func (s *Scheduler) RunOnce(ctx context.Context) SyncResult {
	s.mu.Lock()
	known := s.known
	s.mu.Unlock()

	current, result := s.syncer.Run(ctx, known)

	s.mu.Lock()
	s.known = current
	s.last = result
	s.mu.Unlock()

	s.logger.Info(ctx, "rag: sync pass added=%d updated=%d unchanged=%d removed=%d errors=%d",
		result.Added, result.Updated, result.Unchanged, result.Removed, len(result.Errors))
	for _, err := range result.Errors {
		s.logger.Error(ctx, "rag: sync error: %v", err)
	}
	return result
}

// Start schedules RunOnce on spec (a standard cron expression, e.g.
// "@every 5m" or "0 */6 * * *") and begins running in the background.
// Call Stop to halt it.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduled runs, waiting for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// LastResult returns the outcome of the most recent sync pass.
func (s *Scheduler) LastResult() SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Known returns the scheduler's current rolling DocumentVersion snapshot,
// for a caller that wants to persist it externally between restarts.
func (s *Scheduler) Known() []DocumentVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DocumentVersion(nil), s.known...)
}
