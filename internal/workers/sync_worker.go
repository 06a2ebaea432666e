package workers

import (
	"context"

	"github.com/mapxn/koodo-reader/internal/service"
)

// syncWorker bridges the periodic sync job into the Worker aggregate.
type syncWorker struct {
	job service.SyncJob
}

// NewSyncWorker wraps job as a Worker.
func NewSyncWorker(job service.SyncJob) Worker {
	return &syncWorker{job: job}
}

func (w *syncWorker) Run(ctx context.Context) {
	w.job.Start(ctx)
}
