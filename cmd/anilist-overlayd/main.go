// Command anilist-overlayd runs overlay update passes on a cron
// schedule. A file lock keeps a single instance per state directory.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/config"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/runner"
)

func main() {
	configFlag := flag.String("config", "", "Configuration file path")
	runOnStart := flag.Bool("run-on-start", true, "Execute a pass immediately before waiting for the schedule")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		LogFile:    cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "daemon")

	lockPath := filepath.Join(cfg.Paths.StateDir, "anilist-overlayd.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire instance lock", logging.Error(err))
		return
	}
	if !locked {
		logger.Error("another instance holds the lock", logging.String("path", lockPath))
		return
	}
	defer lock.Unlock()

	var running atomic.Bool
	pass := func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous pass still running, skipping this tick")
			return
		}
		defer running.Store(false)

		r, err := runner.New(cfg, logger)
		if err != nil {
			logger.Error("build runner", logging.Error(err))
			return
		}
		defer r.Close()

		if _, err := r.Run(ctx); err != nil {
			logger.Error("overlay pass failed", logging.Error(err))
		}
	}

	scheduler := cron.New()
	entryID, err := scheduler.AddFunc(cfg.Daemon.Schedule, pass)
	if err != nil {
		logger.Error("invalid cron schedule",
			logging.String("schedule", cfg.Daemon.Schedule),
			logging.Error(err))
		return
	}

	scheduler.Start()
	logger.Info("daemon started",
		logging.String("schedule", cfg.Daemon.Schedule),
		logging.String("next_run", scheduler.Entry(entryID).Next.Format(time.RFC3339)))

	if *runOnStart {
		pass()
	}

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("daemon shutting down")
}
