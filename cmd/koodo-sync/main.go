package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mapxn/koodo-reader/internal/adapter"
	"github.com/mapxn/koodo-reader/internal/config"
	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/internal/service"
	"github.com/mapxn/koodo-reader/internal/store"
	"github.com/mapxn/koodo-reader/internal/utils"
	"github.com/mapxn/koodo-reader/internal/workers"
	"github.com/mapxn/koodo-reader/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("koodo-sync")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	cmd := flag.Arg(0)
	if cmd == "watch" {
		log = logger.NewFileLogger("koodo-sync")
	}

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	// The drive backend is optional: without one the localOnly and
	// cover commands still work, and remote runs fail per call.
	var drive store.Drive
	if cfg.Drive.Backend != "" {
		drive, err = adapter.NewDrive(cfg.Drive, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating drive backend")
		}
	}

	tracker := service.NewChangeTracker(storages.Records, storages.Log, log)
	syncer := buildSyncer(cfg, storages, tracker, drive, log)
	covers := service.NewCoverService(tracker, storages.Blobs, log)
	policy := models.ConflictPolicy(cfg.Sync.ConflictPolicy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "", "sync":
		runOnce(ctx, syncer, models.ModeRemote, policy, log)
	case "local":
		runOnce(ctx, syncer, models.ModeLocalOnly, policy, log)
	case "diff":
		printDiff(ctx, syncer, log)
	case "watch":
		watch(ctx, cfg, storages, syncer, policy, log)
	case "add-cover":
		addCover(ctx, covers, flag.Arg(1), flag.Arg(2), log)
	case "get-cover":
		getCover(ctx, covers, flag.Arg(1), log)
	case "del-cover":
		delCover(ctx, covers, flag.Arg(1), log)
	default:
		log.Fatal().Str("command", cmd).
			Msg("unknown command (expected sync, local, diff, watch, add-cover, get-cover or del-cover)")
	}
}

// buildSyncer wires the sync engine: the reconciler plus one
// orchestrated target per configured mode. The localOnly target reuses
// the same record-over-drive layering pointed at the configured folder;
// drive may be nil when no remote backend is configured.
func buildSyncer(cfg *config.Config, storages *store.Storages, tracker service.ChangeTracker, drive store.Drive, log *logger.Logger) service.Syncer {
	opts := service.OrchestratorOptions{
		WorkerCount: cfg.Sync.WorkerCount,
		MaxAttempts: cfg.Sync.Retry.MaxAttempts,
		BaseDelay:   cfg.Sync.Retry.BaseDelay,
		MaxDelay:    cfg.Sync.Retry.MaxDelay,
	}

	targets := make(map[models.SyncMode]service.SyncTarget)

	if drive != nil {
		remoteRecords := adapter.NewRemoteStore(drive, log)
		targets[models.ModeRemote] = service.SyncTarget{
			Records: remoteRecords,
			Orch: service.NewOrchestrator(
				storages.Records, storages.Blobs,
				remoteRecords, drive,
				storages.Cursor, storages.Log,
				nil, opts, log,
			),
		}
	}

	if cfg.Drive.Folder != "" {
		folderDrive, err := store.NewLocalDrive(cfg.Drive.Folder, log)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating folder target")
		}
		folderRecords := adapter.NewRemoteStore(folderDrive, log)
		targets[models.ModeLocalOnly] = service.SyncTarget{
			Records: folderRecords,
			Orch: service.NewOrchestrator(
				storages.Records, storages.Blobs,
				folderRecords, folderDrive,
				storages.Cursor, storages.Log,
				nil, opts, log,
			),
		}
	}

	return service.NewSyncer(tracker, service.NewReconciler(), targets, log)
}

func runOnce(ctx context.Context, syncer service.Syncer, mode models.SyncMode, policy models.ConflictPolicy, log *logger.Logger) {
	outcome, err := syncer.RunSync(ctx, mode, policy)
	if err != nil {
		log.Fatal().Err(err).Msg("sync run failed")
	}

	log.Info().
		Str("status", string(outcome.Status)).
		Int("pulled", outcome.Pulled).
		Int("pushed", outcome.Pushed).
		Int("deleted", outcome.Deleted).
		Msg("sync finished")

	for _, f := range outcome.Failed {
		log.Warn().
			Str("collection", string(f.Entry.Collection)).
			Str("key", f.Entry.Key).
			Bool("retryable", f.Retryable).
			Str("cause", f.Cause).
			Msg("entry not synced")
	}
	for _, u := range outcome.Unresolved {
		log.Warn().
			Str("collection", string(u.Collection)).
			Str("key", u.Key).
			Msg("conflict unresolved")
	}

	if outcome.Status != models.StatusSuccess {
		os.Exit(1)
	}
}

// addCover stores an image file as the cover for key, minting a fresh
// key when none is given. The cover reaches other devices on the next
// sync run.
func addCover(ctx context.Context, covers service.CoverService, path, key string, log *logger.Logger) {
	if path == "" {
		log.Fatal().Msg("usage: add-cover <image-file> [key]")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("error reading cover file")
	}

	if key == "" {
		key = utils.NewKeyGenerator().Generate()
	}

	rec, err := covers.SaveCover(ctx, key, raw)
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("error saving cover")
	}

	fmt.Printf("%s %s (rev %d)\n", rec.Key, rec.Blob.Name, rec.Revision)
}

func getCover(ctx context.Context, covers service.CoverService, key string, log *logger.Logger) {
	if key == "" {
		log.Fatal().Msg("usage: get-cover <key>")
	}

	inline, err := covers.GetCover(ctx, key)
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("error reading cover")
	}

	fmt.Println(inline)
}

func delCover(ctx context.Context, covers service.CoverService, key string, log *logger.Logger) {
	if key == "" {
		log.Fatal().Msg("usage: del-cover <key>")
	}

	if err := covers.DeleteCover(ctx, key); err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("error deleting cover")
	}
}

func printDiff(ctx context.Context, syncer service.Syncer, log *logger.Logger) {
	plan, err := syncer.CompareOnly(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("compare failed")
	}

	for _, e := range plan.Entries {
		if e.Decision == models.DecisionSkip {
			continue
		}
		fmt.Printf("%-12s %s/%s\n", e.Decision, e.Collection, e.Key)
	}
	fmt.Printf("%d entries, %d transfers\n", len(plan.Entries), plan.Transfers())
}

func watch(ctx context.Context, cfg *config.Config, storages *store.Storages, syncer service.Syncer, policy models.ConflictPolicy, log *logger.Logger) {
	job := service.NewSyncJob(syncer, policy, cfg.Workers.SyncInterval, log)
	defer job.Stop()

	all := workers.NewWorkers(
		workers.NewSyncWorker(job),
		workers.NewLogPruner(storages.Log, 2*cfg.Workers.SyncInterval, cfg.Workers.SyncInterval, log),
	)
	all.Run(ctx)

	log.Info().Dur("interval", cfg.Workers.SyncInterval).Msg("watching for changes, ctrl-c to stop")
	<-ctx.Done()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
