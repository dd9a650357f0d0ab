package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"noveltycam/internal/config"
	"noveltycam/internal/logger"
	"noveltycam/internal/metrics"
	"noveltycam/internal/repository/csvfile"
	"noveltycam/internal/repository/sqlite"
	"noveltycam/internal/routes"
	"noveltycam/internal/service/ai"
	"noveltycam/internal/service/alert"
	"noveltycam/internal/service/monitor"
	"noveltycam/internal/service/notify"
	"noveltycam/internal/service/storage"
	"noveltycam/internal/service/video"
	"noveltycam/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	db       *sqlite.DB
	source   *video.Source
	detector *ai.DetectorService
	hub      *websocket.HubService
	nats     *notify.NATSNotifier
	monitor  *monitor.Monitor[*video.Frame]
	server   *http.Server
}

// NewApp opens every resource the monitor needs. On error, whatever was
// already opened is closed again.
func NewApp(cfg *config.Config, logger *logger.Logger) (a *App, err error) {
	a = &App{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
		hub:     websocket.NewHubService(logger),
	}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	a.db, err = sqlite.New(cfg.DatabasePath)
	if err != nil {
		return a, fmt.Errorf("failed to open alert database: %w", err)
	}
	alertRepo := sqlite.NewAlertRepository(a.db)

	logs := alert.MultiLog{alertRepo}
	if cfg.CSVLogPath != "" {
		csvLog, err := csvfile.NewAlertLog(cfg.CSVLogPath)
		if err != nil {
			return a, fmt.Errorf("failed to open CSV alert log: %w", err)
		}
		logs = append(logs, csvLog)
	}

	notifiers := notify.Multi{notify.Named{Name: "websocket", Notifier: notify.NewHubNotifier(a.hub)}}
	if cfg.EmailEnabled() {
		email := notify.NewEmailNotifier(cfg)
		notifiers = append(notifiers, notify.NewBreakerNotifier(email, notify.BreakerSettings{Name: "email"}, logger))
		logger.Info("✉️  Alert emails to %s via %s:%d", cfg.SMTPTo, cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.NATSURL != "" {
		a.nats, err = notify.NewNATSNotifier(cfg.NATSURL, cfg.NATSSubject, logger)
		if err != nil {
			return a, err
		}
		notifiers = append(notifiers, notify.Named{Name: "nats", Notifier: a.nats})
	}

	a.detector, err = ai.NewDetectorService(cfg, logger)
	if err != nil {
		return a, err
	}

	a.source, err = video.Open(cfg, logger)
	if err != nil {
		return a, err
	}

	images := storage.NewImageStore(cfg, logger)
	dispatcher := alert.NewDispatcher[*video.Frame](images, logs, notifiers, logger)

	a.monitor = monitor.New[*video.Frame](a.source, a.detector, dispatcher, monitor.Options{
		WarmupFrames: cfg.WarmupFrames,
		Cooldown:     cfg.AlertCooldown,
	}, logger, a.metrics)

	if cfg.HTTPPort > 0 {
		a.server = &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: routes.SetupRoutes(routes.Dependencies{
				Config:  cfg,
				Logger:  logger,
				Alerts:  alertRepo,
				Hub:     a.hub,
				Metrics: a.metrics,
				Status:  a.monitor.Stats,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return a, nil
}

// Run processes the video until it ends, ctx is cancelled or a fatal error
// occurs. The HTTP API lives exactly as long as the monitoring loop.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("🚀 Novelty Monitor")
	a.logger.Info("📹 Source: %s", a.config.VideoSource)
	a.logger.Info("🤖 AI Model: %s (%s)", a.config.ModelPath, a.config.ModelFormat)
	a.logger.Info("📁 Images: %s", a.config.ImageDirectory)
	a.logger.Info("⏱️  Warm-up: %d frames, cooldown: %s", a.config.WarmupFrames, a.config.AlertCooldown)

	g, gctx := errgroup.WithContext(ctx)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	if a.server != nil {
		a.logger.Info("📍 URL: http://localhost:%d", a.config.HTTPPort)
		g.Go(func() error {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := a.monitor.Run(gctx)
		a.shutdownServer()
		return err
	})

	return g.Wait()
}

func (a *App) shutdownServer() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warning("HTTP server shutdown: %v", err)
	}
}

// Close releases the video source, the model, the NATS connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.source != nil {
		errs = append(errs, a.source.Close())
	}
	if a.detector != nil {
		errs = append(errs, a.detector.Close())
	}
	if a.nats != nil {
		errs = append(errs, a.nats.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
