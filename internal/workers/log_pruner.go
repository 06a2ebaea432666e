package workers

import (
	"context"
	"time"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
)

// LogPruner periodically drops old sync-log entries. Retention must
// cover at least one full sync cycle so the log stays useful for
// auditing the previous run.
type LogPruner struct {
	log       store.SyncLog
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
}

// NewLogPruner constructs a pruner. A non-positive retention defaults
// to 24 hours, a non-positive interval to one hour.
func NewLogPruner(log store.SyncLog, retention, interval time.Duration, lg *logger.Logger) *LogPruner {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &LogPruner{log: log, retention: retention, interval: interval, logger: lg}
}

// Run implements Worker. The pruning goroutine exits when ctx is
// cancelled.
func (p *LogPruner) Run(ctx context.Context) {
	go func() {
		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				before := time.Now().Add(-p.retention).UnixMilli()
				if err := p.log.Prune(ctx, before); err != nil {
					p.logger.Err(err).Msg("prune sync log")
				}
			}
		}
	}()
}
