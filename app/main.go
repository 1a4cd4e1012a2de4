package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/zot-comb/app/api"
	"github.com/lysyi3m/zot-comb/app/cfg"
	"github.com/lysyi3m/zot-comb/app/config"
	"github.com/lysyi3m/zot-comb/app/database"
	"github.com/lysyi3m/zot-comb/app/discover"
	"github.com/lysyi3m/zot-comb/app/fetcher"
	"github.com/lysyi3m/zot-comb/app/reconcile"
	"github.com/lysyi3m/zot-comb/app/report"
	"github.com/lysyi3m/zot-comb/app/tasks"
	"github.com/lysyi3m/zot-comb/app/zotero"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Zot Comb", "version", appCfg.Version, "library_id", appCfg.LibraryID,
		"api_key", zotero.MaskKey(appCfg.APIKey), "dry_run", appCfg.DryRun, "stream", appCfg.Stream)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	domainRepo := database.NewDomainRepository(db)
	runRepo := database.NewRunRepository(db)
	changeRepo := database.NewChangeRepository(db)

	userAgent := cmp.Or(appCfg.UserAgent, fetcher.DefaultUserAgent)
	fetchTimeout := time.Duration(appCfg.FetchTimeout * float64(time.Second))

	pageFetcher := fetcher.NewFetcher(userAgent, fetchTimeout, appCfg.RateLimit)
	discoverer := discover.NewDiscoverer(userAgent, fetchTimeout)

	client := zotero.NewClient(zotero.DefaultBaseURL, appCfg.APIKey, appCfg.LibraryID,
		appCfg.LibraryType, userAgent, &http.Client{Timeout: 30 * time.Second})

	reconciler := reconcile.NewReconciler(pageFetcher, domainRepo, discoverer, reconcile.Options{
		Force:      appCfg.Force,
		NoSubstack: appCfg.NoSubstack,
		NoLinkedIn: appCfg.NoLinkedIn,
	})

	mode := "batch"
	if appCfg.Stream {
		mode = "stream"
	}

	runID, err := runRepo.StartRun(mode)
	if err != nil {
		slog.Error("Failed to start run", "error", err)
		os.Exit(1)
	}

	stats := tasks.NewStats()
	scheduler := tasks.NewScheduler(appCfg.WorkerCount)
	scheduler.Start()

	newItemTask := func(item zotero.Item) tasks.TaskInterface {
		return tasks.NewProcessItemTask(item, reconciler, client, changeRepo, stats, runID, appCfg.DryRun)
	}

	seedDomains(appCfg.DomainsFile, domainRepo, discoverer, scheduler)

	exitCode := 0
	if appCfg.Stream {
		exitCode = runStream(appCfg, client, scheduler, newItemTask, stats, runRepo, changeRepo, domainRepo, runID)
	} else {
		exitCode = runBatch(appCfg, client, scheduler, newItemTask, stats, runRepo, changeRepo, runID)
	}

	scheduler.Stop()
	os.Exit(exitCode)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// seedDomains loads the domains file. Verified entries go straight
// into the store; the rest are verified in the background through
// their feeds.
func seedDomains(path string, domainRepo database.DomainRepository, discoverer *discover.Discoverer, scheduler tasks.TaskSchedulerInterface) {
	domainsCfg, err := config.NewLoader(path).Load()
	if err != nil {
		slog.Error("Failed to load domains file", "error", err)
		os.Exit(1)
	}

	for _, entry := range domainsCfg.Domains {
		if entry.Verified {
			if err := domainRepo.Add(entry.Host, "seed-file"); err != nil {
				slog.Warn("Failed to seed domain", "host", entry.Host, "error", err)
			}
			continue
		}

		task := tasks.NewDiscoverDomainTask(entry.Host, "seed-file", discoverer, domainRepo)
		if err := scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue DiscoverDomainTask", "host", entry.Host, "error", err)
		}
	}
}

// runBatch walks the whole library once, drains the queue, writes the
// report and exits.
func runBatch(appCfg *cfg.Cfg, client *zotero.Client, scheduler tasks.TaskSchedulerInterface,
	newItemTask func(zotero.Item) tasks.TaskInterface, stats *tasks.Stats,
	runRepo database.RunRepository, changeRepo database.ChangeRepository, runID string) int {

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	syncTask := tasks.NewSyncLibraryTask(client, scheduler, newItemTask, nil)
	if err := scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Failed to enqueue SyncLibraryTask", "error", err)
		return 1
	}

	if err := scheduler.Drain(ctx); err != nil {
		slog.Warn("Run interrupted before completion", "error", err)
	}

	counters := stats.Snapshot()
	if err := runRepo.FinishRun(runID, counters); err != nil {
		slog.Warn("Failed to record run", "run_id", runID, "error", err)
	}

	writeReport(appCfg.ReportFile, changeRepo, runID)

	slog.Info("Run complete",
		"run_id", runID,
		"processed", counters.Processed,
		"substack_found", counters.SubstackFound,
		"linkedin_found", counters.LinkedInFound,
		"urls_cleaned", counters.URLsCleaned,
		"updated", counters.Updated,
		"errors", counters.Errors)

	if counters.Errors > 0 {
		return 1
	}
	return 0
}

// runStream polls the library for changed items and serves the ops
// API until interrupted.
func runStream(appCfg *cfg.Cfg, client *zotero.Client, scheduler tasks.TaskSchedulerInterface,
	newItemTask func(zotero.Item) tasks.TaskInterface, stats *tasks.Stats,
	runRepo database.RunRepository, changeRepo database.ChangeRepository,
	domainRepo database.DomainRepository, runID string) int {

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := make(chan zotero.Item, 100)
	pollerErrChan := make(chan error, 1)
	poller := zotero.NewPoller(client, time.Duration(appCfg.PollInterval)*time.Second)
	go func() {
		pollerErrChan <- poller.Run(ctx, items)
	}()

	go func() {
		for item := range items {
			if err := scheduler.EnqueueTask(newItemTask(item)); err != nil {
				slog.Warn("Failed to enqueue ProcessItemTask", "item_key", item.Key, "error", err)
			}
		}
	}()

	handler := api.NewHandler(runRepo, changeRepo, domainRepo, stats, runID)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
		exitCode = 1
	case err := <-pollerErrChan:
		if err != nil {
			slog.Error("Poller stopped", "error", err)
			exitCode = 1
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	if err := scheduler.Drain(shutdownCtx); err != nil {
		slog.Warn("Queued tasks abandoned on shutdown", "error", err)
	}

	if err := runRepo.FinishRun(runID, stats.Snapshot()); err != nil {
		slog.Warn("Failed to record run", "run_id", runID, "error", err)
	}

	slog.Info("Shutdown complete", "run_id", runID)
	return exitCode
}

func writeReport(path string, changeRepo database.ChangeRepository, runID string) {
	now := time.Now()
	if path == "" {
		path = report.DefaultFilename(now)
	}

	changes, err := changeRepo.ChangesForRun(runID)
	if err != nil {
		slog.Warn("Failed to load changes for report", "run_id", runID, "error", err)
		return
	}

	if err := report.NewGenerator().Write(path, changes, now); err != nil {
		slog.Warn("Failed to write report", "path", path, "error", err)
	}
}
