package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"griefingcounter/internal/classifier"
	"griefingcounter/internal/config"
	"griefingcounter/internal/ingest"
	"griefingcounter/internal/logger"
	"griefingcounter/internal/models"
	"griefingcounter/internal/stats"
	"griefingcounter/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("Config load failed", zap.Error(err))
	}

	rootLogger, err := logger.InitZap(&cfg.Logging)
	if err != nil {
		zap.NewExample().Fatal("Logger init failed", zap.Error(err))
	}
	lg := rootLogger.Named("main")
	defer lg.Sync()
	lg.Info("griefingcounter starting",
		zap.String("player", cfg.Player), zap.String("live", cfg.LivePath()))

	st, err := store.Open(cfg.DatabaseFolder, cfg.Player, rootLogger.Named("store"))
	if err != nil {
		if errors.Is(err, store.ErrNoPlayer) {
			lg.Error("No player name configured; set `player` in config.yaml and restart")
			os.Exit(2)
		}
		lg.Fatal("Store open failed", zap.Error(err))
	}
	defer st.Close()
	lg.Info("Store opened", zap.String("db", st.Path()), zap.Float64("size_kb", st.SizeKB()))

	cls := classifier.New(st, rootLogger.Named("classifier"))
	engine := ingest.NewEngine(st, cls, cfg.Player, rootLogger.Named("ingest"))
	statsEngine := stats.NewEngine(st, cfg.Player, rootLogger.Named("stats"))

	runner := ingest.NewRunner(engine, cls, ingest.RunnerConfig{
		LivePath:           cfg.LivePath(),
		BackupFolder:       cfg.BackupFolder,
		RefreshInterval:    cfg.RefreshInterval,
		SweepInterval:      cfg.SweepInterval,
		ReclassifyInterval: cfg.ReclassifyInterval,
	}, rootLogger.Named("runner"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() { defer wg.Done(); runner.Start(ctx) }()

	wg.Add(1)
	go func() {
		defer wg.Done()
		drainErrors(ctx, runner, lg)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		reportLoop(ctx, engine, statsEngine, cfg, lg)
	}()

	<-stop
	lg.Info("Shutdown signal received")
	cancel()
	wg.Wait()
	lg.Info("griefingcounter stopped")
}

// drainErrors surfaces background failures; ingestion keeps running either way.
func drainErrors(ctx context.Context, runner *ingest.Runner, lg *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-runner.Errors():
			lg.Warn("Background failure", zap.Error(err))
		}
	}
}

// reportLoop logs a compact stats summary on every refresh interval.
func reportLoop(ctx context.Context, engine *ingest.Engine, statsEngine *stats.Engine,
	cfg *config.Config, lg *zap.Logger) {

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sum, err := statsEngine.ComputeStats(ctx, models.Filters{})
			if err != nil {
				lg.Warn("Stats unavailable", zap.Error(err))
				continue
			}
			imported, total, _ := engine.Progress(ctx, cfg.BackupFolder)
			lg.Info("Stats",
				zap.Int("kills", sum.Kills),
				zap.Int("deaths", sum.Deaths),
				zap.Int("suicides", sum.Suicides),
				zap.Float64("kd", sum.KDRatio),
				zap.Int("backups_imported", imported),
				zap.Int("backups_total", total))
		}
	}
}
