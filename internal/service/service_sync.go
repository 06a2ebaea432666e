package service

import (
	"context"
	"fmt"

	"github.com/mapxn/koodo-reader/internal/adapter"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

// SyncTarget bundles the far side of a sync run: the record store
// layered on the target drive and the orchestrator wired to it. The
// remote mode targets the configured drive backend; the localOnly mode
// targets a mounted folder, going through exactly the same machinery.
type SyncTarget struct {
	Records adapter.RemoteStore
	Orch    Orchestrator
}

// syncer is the caller-facing facade gluing snapshot capture,
// reconciliation and execution together.
type syncer struct {
	tracker    ChangeTracker
	reconciler Reconciler
	targets    map[models.SyncMode]SyncTarget
	logger     *logger.Logger
}

// NewSyncer constructs a Syncer over the configured targets.
func NewSyncer(tracker ChangeTracker, rec Reconciler, targets map[models.SyncMode]SyncTarget, lg *logger.Logger) Syncer {
	return &syncer{
		tracker:    tracker,
		reconciler: rec,
		targets:    targets,
		logger:     lg,
	}
}

// RunSync implements Syncer: capture both snapshots, compare, execute.
func (s *syncer) RunSync(ctx context.Context, mode models.SyncMode, policy models.ConflictPolicy) (models.SyncOutcome, error) {
	target, ok := s.targets[mode]
	if !ok {
		return models.Aborted(fmt.Sprintf("no target for mode %q", mode)), fmt.Errorf("%w: %q", ErrUnknownSyncMode, mode)
	}

	plan, err := s.compare(ctx, target)
	if err != nil {
		return models.Aborted("snapshot or compare failed"), err
	}

	s.logger.Info().
		Str("mode", string(mode)).
		Int("entries", len(plan.Entries)).
		Int("transfers", plan.Transfers()).
		Msg("diff plan built")

	return target.Orch.Execute(ctx, plan, policy)
}

// CompareOnly implements Syncer: the dry-run preview against the remote
// target. No side effects.
func (s *syncer) CompareOnly(ctx context.Context) (models.DiffPlan, error) {
	target, ok := s.targets[models.ModeRemote]
	if !ok {
		return models.DiffPlan{}, fmt.Errorf("%w: %q", ErrUnknownSyncMode, models.ModeRemote)
	}
	return s.compare(ctx, target)
}

func (s *syncer) compare(ctx context.Context, target SyncTarget) (models.DiffPlan, error) {
	local, err := s.tracker.SnapshotLocal(ctx, models.SyncCollections)
	if err != nil {
		return models.DiffPlan{}, fmt.Errorf("capture local snapshot: %w", err)
	}

	remote, err := target.Records.Snapshot(ctx, models.SyncCollections)
	if err != nil {
		return models.DiffPlan{}, fmt.Errorf("capture remote snapshot: %w", err)
	}

	plan, err := s.reconciler.Compare(ctx, local, remote)
	if err != nil {
		return models.DiffPlan{}, fmt.Errorf("compare snapshots: %w", err)
	}
	return plan, nil
}
