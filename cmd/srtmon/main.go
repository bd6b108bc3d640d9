package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/services"
	httphandlers "srtmon/internal/handlers/http"
	"srtmon/internal/infrastructure/live"
	"srtmon/internal/infrastructure/monitoring"
	"srtmon/internal/infrastructure/repositories"
	"srtmon/internal/infrastructure/statsclient"
	"srtmon/pkg/config"
	"srtmon/pkg/logger"
	"srtmon/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "srtmon: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	tp, err := tracing.Init(cfg.Tracing)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	store := repoFactory.CreateSlotStore()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := monitoring.NewPrometheusCollector(reg)

	// Monitor and poller
	monitor := services.NewStatsMonitor(statsclient.NewClient(&http.Client{}), domain.MonitorSettings{})
	monitor.Subscribe(collector.UpdateMonitorState)

	poller := services.NewPoller(monitor, cfg.Monitor.PollInterval, log.Named("poller"))
	poller.SetObserver(collector)

	settingsSync := services.NewSettingsSync(monitor, poller, cfg.Monitor.PollInterval, log.Named("settings"))

	// Settings: config values seed the record, the stored slot wins
	initial := domain.ViewerSettings{
		StatsURL: cfg.Monitor.StatsURL,
		StreamID: domain.StreamID(cfg.Monitor.StreamID),
	}
	opts := services.PersistOptions[domain.ViewerSettings]{Watch: cfg.Settings.Watch}
	if cfg.Settings.Watch {
		opts.OnChange = settingsSync.Apply
	}
	settings, err := services.NewPersistentValue(ctx, store, cfg.Settings.SlotKey, initial, opts)
	if err != nil {
		log.Fatalw("failed to load settings", "slot", cfg.Settings.SlotKey, "error", err)
	}
	if !cfg.Settings.Watch {
		settings.Subscribe(settingsSync.Apply)
	}
	settingsSync.Apply(settings.Get())
	log.Infow("settings loaded", "slot", settings.Key(), "watch", cfg.Settings.Watch)

	// Health
	health := monitoring.NewHealthChecker()
	health.AddCheck("slot_store", store.Ping, 2*time.Second)
	if cfg.Monitoring.StaleAfter > 0 {
		health.AddCheck("stats_freshness",
			monitoring.StatsFreshnessCheck(monitor.State, cfg.Monitoring.StaleAfter, time.Now), time.Second)
	}

	feed := live.NewFeed(monitor, live.Config{
		PingInterval: cfg.WebSocket.PingInterval,
		PongTimeout:  cfg.WebSocket.PongTimeout,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
		SendBuffer:   cfg.WebSocket.SendBuffer,
	}, log.Named("live"))
	collector.ObserveLiveClients(feed.Clients)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := httphandlers.RouterDeps{
		Config:   cfg,
		Logger:   log.Named("http"),
		Monitor:  monitor,
		Settings: settings,
		Health:   health,
		Live:     feed,
		Started:  startTime,
	}
	if cfg.Monitoring.PrometheusEnabled {
		deps.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		log.Info("Prometheus metrics enabled")
	}
	router := httphandlers.NewRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		log.Infow("starting srtmon", "address", cfg.Server.Address, "redis", repoFactory.UsesRedis())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Errorw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	log.Info("shutting down srtmon...")
	stop()
	<-pollerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error shutting down tracer provider", "error", err)
	}

	log.Info("srtmon stopped")
}
