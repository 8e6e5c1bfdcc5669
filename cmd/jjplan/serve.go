package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jjplan/internal/handler"
	"jjplan/internal/hub"
	"jjplan/internal/repository"
	"jjplan/internal/service"
	"jjplan/internal/watcher"
)

var (
	serveAddr      string
	serveStore     string
	serveStorePath string
	serveWatch     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the jjplan HTTP API: position graph, navigation sessions, the
belt-filtered submission catalog, the Tap List, the roll timer, and a
Server-Sent Events stream at /events. Prometheus metrics are served at
/metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default from config, :3000)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "Tap store driver: "+joinDrivers())
	serveCmd.Flags().StringVar(&serveStorePath, "store-path", "", "Tap store location (sqlite file or badger directory)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the dataset file when it changes")
}

// applyServeFlags lets explicit flags override the config file
func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if flags.Changed("store") {
		cfg.Store.Driver = serveStore
		// A path configured for another driver does not carry over
		if !flags.Changed("store-path") {
			cfg.Store.Path = ""
			if serveStore == "sqlite" {
				cfg.Store.Path = "./jjplan.db"
			}
		}
	}
	if flags.Changed("store-path") {
		cfg.Store.Path = serveStorePath
	}
	if flags.Changed("watch") {
		cfg.Dataset.Watch = serveWatch
	}
	cfg.Dataset.Path = activeDatasetPath(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Info("starting jjplan", zap.String("config", cfg.Summary()))

	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}

	store, err := repository.Open(cfg.Store.Driver, cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	eventBus := service.NewEventBus()
	plans := service.NewGamePlanService(plan, eventBus, logger, service.Options{
		PreviewDepth: cfg.PreviewDepth,
		SessionTTL:   cfg.Sessions.TTL.Duration(),
	})
	taps := service.NewTapService(store, plans, eventBus, logger)

	sseHub := hub.New(logger)
	events := make(chan service.Event, 100)
	eventBus.Subscribe(events)
	defer eventBus.Unsubscribe(events)

	mux := http.NewServeMux()
	handler.NewGamePlanHandler(plans, logger).Register(mux)
	handler.NewTapHandler(taps, cfg.RateLimit.TapsPerMinute, logger).Register(mux)
	handler.NewTimerHandler(cfg.TimerPlan(), logger).Register(mux)
	mux.Handle("GET /events", sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: handler.Chain(mux,
			handler.Recover(logger),
			handler.CORS,
			handler.Logger(logger),
			handler.Metrics,
			handler.Compress,
		),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return sseHub.Run(gctx) })
	g.Go(func() error { return hub.Forward[service.Event](gctx, sseHub, events) })

	if cfg.Sessions.TTL > 0 {
		g.Go(func() error { return plans.RunSweeper(gctx, cfg.Sessions.SweepInterval.Duration()) })
	}

	if cfg.Dataset.Watch {
		if cfg.Dataset.Path == "" {
			logger.Warn("dataset watch ignored for the embedded dataset")
		} else {
			path := cfg.Dataset.Path
			w := watcher.New(path, func() {
				// A failed reload keeps the active plan; the service logs why
				_ = plans.ReloadFromPath(path)
			}, logger)
			g.Go(func() error { return w.Watch(gctx) })
		}
	}

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func joinDrivers() string {
	return strings.Join(repository.Drivers, ", ")
}
