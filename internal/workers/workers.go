// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background
// worker. Run starts the worker's execution; implementations are
// expected to return quickly and do their work on goroutines bound to
// ctx.
type Worker interface {
	Run(ctx context.Context)
}

// Workers runs a set of workers as one unit.
type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

// Run starts every worker in registration order.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}
