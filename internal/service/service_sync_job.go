package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

// syncJob runs a full remote sync on a ticker. It is idle until Start is
// called; a run overlapping a manual sync is rejected by the run lock
// and simply retried on the next tick.
type syncJob struct {
	syncer   Syncer
	policy   models.ConflictPolicy
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob constructs a periodic sync job. A non-positive interval
// defaults to 5 minutes.
func NewSyncJob(syncer Syncer, policy models.ConflictPolicy, interval time.Duration, lg *logger.Logger) SyncJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &syncJob{
		syncer:   syncer,
		policy:   policy,
		interval: interval,
		logger:   lg,
	}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine syncing every interval. The goroutine
// exits when ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runOnce(jobCtx)
			}
		}
	}()
}

// Stop implements SyncJob. It cancels the background goroutine and
// blocks until it has fully exited. Safe to call when the job is not
// running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) runOnce(ctx context.Context) {
	outcome, err := j.syncer.RunSync(ctx, models.ModeRemote, j.policy)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		j.logger.Debug().Msg("periodic sync skipped, run already in progress")
	case err != nil:
		j.logger.Err(err).Msg("periodic sync failed")
	default:
		j.logger.Info().
			Str("status", string(outcome.Status)).
			Int("pulled", outcome.Pulled).
			Int("pushed", outcome.Pushed).
			Int("deleted", outcome.Deleted).
			Int("failed", len(outcome.Failed)).
			Msg("periodic sync finished")
	}
}
