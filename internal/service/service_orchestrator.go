package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mapxn/koodo-reader/internal/adapter"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/models"
)

// OrchestratorOptions carries the tuning knobs of plan execution.
type OrchestratorOptions struct {
	// WorkerCount bounds per-phase transfer concurrency.
	WorkerCount int

	// MaxAttempts, BaseDelay and MaxDelay shape the per-entry backoff
	// applied to transient failures.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// orchestrator executes diff plans. At most one run is in flight at a
// time; the same lock that rejects concurrent runs also guards the
// cursor commit, so the cursor is only ever written by the run that owns
// the lock.
type orchestrator struct {
	local       store.RecordStore
	localBlobs  store.Drive
	remote      store.RecordStore
	remoteBlobs store.Drive
	cursor      store.CursorStore
	log         store.SyncLog
	answerer    ConflictAnswerer
	logger      *logger.Logger
	opts        OrchestratorOptions

	now func() int64

	runMu sync.Mutex
	keys  keyLocks
}

// NewOrchestrator constructs an Orchestrator over the given stores.
// answerer may be nil; ask-policy conflicts are then reported
// unresolved.
func NewOrchestrator(
	local store.RecordStore, localBlobs store.Drive,
	remote store.RecordStore, remoteBlobs store.Drive,
	cursor store.CursorStore, log store.SyncLog,
	answerer ConflictAnswerer, opts OrchestratorOptions, lg *logger.Logger,
) Orchestrator {
	return &orchestrator{
		local:       local,
		localBlobs:  localBlobs,
		remote:      remote,
		remoteBlobs: remoteBlobs,
		cursor:      cursor,
		log:         log,
		answerer:    answerer,
		logger:      lg,
		opts:        opts,
		now:         func() int64 { return time.Now().UnixMilli() },
	}
}

// Execute implements Orchestrator. Phases run in strict order: conflict
// rewrite, then pulls (including local deletes), then pushes (including
// remote deletes), then the cursor commit. The cursor only advances on a
// fully clean run, so a partial failure guarantees the next run re-diffs
// the same set.
func (o *orchestrator) Execute(ctx context.Context, plan models.DiffPlan, policy models.ConflictPolicy) (models.SyncOutcome, error) {
	if !o.runMu.TryLock() {
		return models.Aborted("another sync run holds the lock"), ErrSyncInProgress
	}
	defer o.runMu.Unlock()

	entries, unresolved := o.resolveConflicts(ctx, plan, policy)

	var pulls, pushes []models.DiffEntry
	for _, e := range entries {
		switch e.Decision {
		case models.DecisionPull, models.DecisionDeleteLocal:
			pulls = append(pulls, e)
		case models.DecisionPush, models.DecisionDeleteRemote:
			pushes = append(pushes, e)
		}
	}

	res := &runResult{}
	o.runPhase(ctx, pulls, res)
	o.runPhase(ctx, pushes, res)

	if err := ctx.Err(); err != nil {
		out := models.Aborted(err.Error())
		out.Failed = res.failedEntries()
		out.Unresolved = unresolved
		return out, nil
	}

	if failed := res.failedEntries(); len(failed) > 0 {
		return models.SyncOutcome{
			Status:     models.StatusPartialFailure,
			Failed:     failed,
			Unresolved: unresolved,
			Pulled:     res.pulled,
			Pushed:     res.pushed,
			Deleted:    res.deleted,
		}, nil
	}

	if err := o.commitCursor(ctx, plan); err != nil {
		return models.Aborted("cursor commit failed"), err
	}

	out := models.Success(res.pulled, res.pushed, res.deleted)
	out.Unresolved = unresolved
	return out, nil
}

// resolveConflicts applies the policy to every conflict entry, rewriting
// it to push or pull. Conflicts without an available answer are
// downgraded to skip and reported unresolved; a decision is never
// fabricated.
func (o *orchestrator) resolveConflicts(ctx context.Context, plan models.DiffPlan, policy models.ConflictPolicy) (entries []models.DiffEntry, unresolved []models.DiffEntry) {
	entries = make([]models.DiffEntry, 0, len(plan.Entries))

	for _, e := range plan.Entries {
		if e.Decision != models.DecisionConflict {
			entries = append(entries, e)
			continue
		}

		switch policy {
		case models.PreferLocal:
			e.Decision = models.DecisionPush
		case models.PreferRemote:
			e.Decision = models.DecisionPull
		case models.PolicyAsk:
			d, ok := models.Decision(""), false
			if o.answerer != nil {
				d, ok = o.answerer.Answer(ctx, e)
			}
			if ok && (d == models.DecisionPush || d == models.DecisionPull) {
				e.Decision = d
			} else {
				o.logger.Warn().
					Err(ErrConflictUnresolved).
					Str("collection", string(e.Collection)).
					Str("key", e.Key).
					Msg("conflict left unresolved")
				unresolved = append(unresolved, e)
				e.Decision = models.DecisionSkip
			}
		default:
			unresolved = append(unresolved, e)
			e.Decision = models.DecisionSkip
		}

		entries = append(entries, e)
	}

	return entries, unresolved
}

// runPhase applies the given entries with a bounded worker pool. Each
// entry is independently atomic, so a failing entry never blocks the
// rest. Cancellation is honored at entry boundaries: once ctx is done,
// workers drain the queue without starting new transfers.
func (o *orchestrator) runPhase(ctx context.Context, entries []models.DiffEntry, res *runResult) {
	if len(entries) == 0 {
		return
	}

	workers := o.opts.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	jobs := make(chan models.DiffEntry)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				if ctx.Err() != nil {
					continue
				}
				o.applyEntry(ctx, e, res)
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)
	wg.Wait()
}

// applyEntry transfers one entry, retrying transient failures with
// bounded exponential backoff. Terminal failures are recorded on the
// result, never propagated.
func (o *orchestrator) applyEntry(ctx context.Context, e models.DiffEntry, res *runResult) {
	attempts := o.opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := o.opts.BaseDelay

	var err error
	for attempt := 1; ; attempt++ {
		err = o.transfer(ctx, e)
		if err == nil {
			res.applied(e.Decision)
			return
		}
		if !errors.Is(err, adapter.ErrTransient) || attempt >= attempts {
			break
		}

		o.logger.Warn().
			Str("collection", string(e.Collection)).
			Str("key", e.Key).
			Int("attempt", attempt).
			Err(err).
			Msg("transient transfer failure, backing off")

		select {
		case <-ctx.Done():
			res.fail(e, err, true)
			return
		case <-time.After(delay):
		}
		delay *= 2
		if o.opts.MaxDelay > 0 && delay > o.opts.MaxDelay {
			delay = o.opts.MaxDelay
		}
	}

	retryable := errors.Is(err, adapter.ErrTransient)
	res.fail(e, err, retryable)

	o.logger.Err(err).
		Str("collection", string(e.Collection)).
		Str("key", e.Key).
		Str("decision", string(e.Decision)).
		Bool("retryable", retryable).
		Msg("entry failed")
}

// transfer applies one entry's decision. The per-key lock spans the
// record write and the blob write so the two never race for the same
// key.
func (o *orchestrator) transfer(ctx context.Context, e models.DiffEntry) error {
	unlock := o.keys.lock(e.ID())
	defer unlock()

	switch e.Decision {
	case models.DecisionPull:
		return o.pull(ctx, e)
	case models.DecisionPush:
		return o.push(ctx, e)
	case models.DecisionDeleteLocal:
		return o.deleteLocal(ctx, e)
	case models.DecisionDeleteRemote:
		return o.deleteRemote(ctx, e)
	case models.DecisionSkip:
		return nil
	default:
		return fmt.Errorf("unexpected decision %q for %s/%s", e.Decision, e.Collection, e.Key)
	}
}

// pull copies one remote entry to this device. The blob moves first and
// the record write commits the entry: if the blob transfer fails, the
// local record stays behind the remote one and the next compare still
// yields a pull for this key.
func (o *orchestrator) pull(ctx context.Context, e models.DiffEntry) error {
	rec := *e.Remote

	if rec.Blob != nil {
		data, err := o.remoteBlobs.Download(ctx, rec.Blob.Name, rec.Blob.Folder)
		if err != nil {
			return fmt.Errorf("download blob %s: %w", rec.Blob.Name, err)
		}
		if err = o.localBlobs.Upload(ctx, rec.Blob.Name, rec.Blob.Folder, data); err != nil {
			return fmt.Errorf("store pulled blob %s: %w", rec.Blob.Name, err)
		}
	}

	if err := o.local.Put(ctx, rec); err != nil {
		return fmt.Errorf("write pulled record %s/%s: %w", rec.Collection, rec.Key, err)
	}

	o.appendLog(ctx, rec, "pull")
	return nil
}

// push copies one local entry to the remote side, blob first for the
// same reason as pull: the remote record only appears once its blob is
// already durable.
func (o *orchestrator) push(ctx context.Context, e models.DiffEntry) error {
	rec := *e.Local

	if rec.Blob != nil {
		data, err := o.localBlobs.Download(ctx, rec.Blob.Name, rec.Blob.Folder)
		if err != nil {
			return fmt.Errorf("read blob %s: %w", rec.Blob.Name, err)
		}
		if err = o.remoteBlobs.Upload(ctx, rec.Blob.Name, rec.Blob.Folder, data); err != nil {
			return fmt.Errorf("upload pushed blob %s: %w", rec.Blob.Name, err)
		}
	}

	if err := o.remote.Put(ctx, rec); err != nil {
		return fmt.Errorf("write pushed record %s/%s: %w", rec.Collection, rec.Key, err)
	}

	o.appendLog(ctx, rec, "push")
	return nil
}

// deleteLocal applies a remote tombstone on this device: the tombstone
// record is stored (so the deletion can propagate further, e.g. to a
// backup folder target) and the local blob is removed.
func (o *orchestrator) deleteLocal(ctx context.Context, e models.DiffEntry) error {
	if err := o.local.Put(ctx, *e.Remote); err != nil {
		return fmt.Errorf("store remote tombstone %s/%s: %w", e.Collection, e.Key, err)
	}

	if e.Local != nil && e.Local.Blob != nil {
		if err := o.localBlobs.Delete(ctx, e.Local.Blob.Name, e.Local.Blob.Folder); err != nil {
			return fmt.Errorf("delete local blob %s: %w", e.Local.Blob.Name, err)
		}
	}

	o.appendLog(ctx, *e.Remote, "deleteLocal")
	return nil
}

// deleteRemote applies a local tombstone to the remote side. The remote
// record object is removed entirely, so the next remote snapshot no
// longer contains the key.
func (o *orchestrator) deleteRemote(ctx context.Context, e models.DiffEntry) error {
	if err := o.remote.Delete(ctx, e.Collection, e.Key); err != nil {
		return fmt.Errorf("delete remote record %s/%s: %w", e.Collection, e.Key, err)
	}

	if e.Remote != nil && e.Remote.Blob != nil {
		if err := o.remoteBlobs.Delete(ctx, e.Remote.Blob.Name, e.Remote.Blob.Folder); err != nil {
			return fmt.Errorf("delete remote blob %s: %w", e.Remote.Blob.Name, err)
		}
	}

	o.appendLog(ctx, *e.Local, "deleteRemote")
	return nil
}

// commitCursor advances the cursor to now with the highest revision seen
// per collection. Called only after a fully clean run.
func (o *orchestrator) commitCursor(ctx context.Context, plan models.DiffPlan) error {
	cur, err := o.cursor.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	marks := make(map[models.Collection]int64)
	for _, e := range plan.Entries {
		for _, rec := range []*models.SyncRecord{e.Local, e.Remote} {
			if rec != nil && rec.Revision > marks[e.Collection] {
				marks[e.Collection] = rec.Revision
			}
		}
	}

	if err = o.cursor.Commit(ctx, cur.Advanced(o.now(), marks)); err != nil {
		return fmt.Errorf("commit cursor: %w", err)
	}
	return nil
}

// appendLog records an applied transfer for audit. Failures are logged
// and swallowed.
func (o *orchestrator) appendLog(ctx context.Context, rec models.SyncRecord, op string) {
	entry := store.SyncLogEntry{
		At:         o.now(),
		Collection: rec.Collection,
		Key:        rec.Key,
		Op:         op,
		Revision:   rec.Revision,
	}
	if err := o.log.Append(ctx, entry); err != nil {
		o.logger.Err(err).Str("op", op).Str("key", rec.Key).Msg("append sync log entry")
	}
}

// runResult collects per-entry outcomes across workers.
type runResult struct {
	mu      sync.Mutex
	pulled  int
	pushed  int
	deleted int
	failed  []models.EntryFailure
}

func (r *runResult) applied(d models.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch d {
	case models.DecisionPull:
		r.pulled++
	case models.DecisionPush:
		r.pushed++
	case models.DecisionDeleteLocal, models.DecisionDeleteRemote:
		r.deleted++
	}
}

func (r *runResult) fail(e models.DiffEntry, cause error, retryable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed = append(r.failed, models.EntryFailure{Entry: e, Cause: cause.Error(), Retryable: retryable})
}

// failedEntries returns the failures sorted by collection then key, so
// outcomes are deterministic regardless of worker scheduling.
func (r *runResult) failedEntries() []models.EntryFailure {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := make([]models.EntryFailure, len(r.failed))
	copy(failed, r.failed)
	sort.Slice(failed, func(i, j int) bool {
		if failed[i].Entry.Collection != failed[j].Entry.Collection {
			return failed[i].Entry.Collection < failed[j].Entry.Collection
		}
		return failed[i].Entry.Key < failed[j].Entry.Key
	})
	return failed
}

// keyLocks hands out one mutex per record identifier.
type keyLocks struct {
	mu    sync.Mutex
	locks map[models.RecordID]*sync.Mutex
}

func (k *keyLocks) lock(id models.RecordID) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[models.RecordID]*sync.Mutex)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
