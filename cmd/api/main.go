package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/marcelsud/payment-gateway-orchestrator/catalog"
	"github.com/marcelsud/payment-gateway-orchestrator/config"
	"github.com/marcelsud/payment-gateway-orchestrator/gateway"
	"github.com/marcelsud/payment-gateway-orchestrator/internal/http/chi"
	"github.com/marcelsud/payment-gateway-orchestrator/metrics"
	"github.com/marcelsud/payment-gateway-orchestrator/monitoring"
	"github.com/marcelsud/payment-gateway-orchestrator/notify"
	"github.com/marcelsud/payment-gateway-orchestrator/webhook/signature"
)

const TIMEOUT = 30 * time.Second

/* main wires every package together and owns the process lifecycle
 * Imports only flow downwards: cmd -> http -> gateway/monitoring -> storage
 */
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	gateways := catalog.NewLoader()
	if err := gateways.Load(cfg.GatewaysFile); err != nil {
		return fmt.Errorf("loading gateway catalog: %w", err)
	}
	regs, err := gateways.Registrations(false)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.repo.Close(context.Background())

	engine := monitoring.NewEngine(monitoring.Options{
		ResponseTimeThreshold: cfg.ResponseTimeThreshold(),
		SuccessRateThreshold:  cfg.SuccessRateThreshold,
		SmoothingAlpha:        cfg.MetricSmoothingAlpha,
		BufferSize:            cfg.EventBufferSize,
		AlertRetention:        cfg.AlertRetention(),
		EventMaxAge:           cfg.EventMaxAge(),
		EvaluationInterval:    cfg.EvaluationInterval(),
		Logger:                logger.With().Str("component", "monitoring").Logger(),
	})

	router, err := gateway.NewRouter(gateway.RouterConfig{
		Gateways: regs,
		Repo:     store.repo,
		Sink:     engine,
		Detector: gateway.NewWebhookDetector(gateways.DefaultWebhookGateway()),
		Tracker: gateway.TrackerOptions{
			FailoverThreshold: cfg.FailoverThreshold,
			SmoothingAlpha:    cfg.MetricSmoothingAlpha,
		},
		StrictHealthy:  !cfg.AllowDegradedFallback,
		AttemptTimeout: cfg.AttemptTimeout(),
		Publisher:      store.publisher,
		Logger:         logger.With().Str("component", "router").Logger(),
	})
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}

	collector := metrics.NewServiceCollector(router, engine)
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	if notifier != nil {
		notifier.Subscribe(engine)
		collector.WithNotifier(notifier)
	}

	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		return fmt.Errorf("creating metrics exporter: %w", err)
	}
	defer exporter.Shutdown(context.Background())

	r := chi.Handlers(ctx, chi.Deps{
		Payments:   router,
		Monitoring: engine,
		Secrets:    gateways,
		Metrics:    exporter.ServeHTTP(),
	})
	http.Handle("/", r)
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      http.DefaultServeMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return router.RunProbes(gctx, cfg.HealthCheckInterval())
	})
	g.Go(func() error {
		return engine.Run(gctx)
	})
	if notifier != nil {
		g.Go(func() error {
			return notifier.Run(gctx)
		})
	}
	g.Go(func() error {
		errShutdown := make(chan error, 1)
		go shutdown(srv, gctx, errShutdown)
		logger.Info().Str("port", cfg.Port).Int("gateways", len(regs)).Msg("listening")
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return <-errShutdown
	})
	return g.Wait()
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger(), nil
}

// newNotifier returns nil when no alert webhook is configured
func newNotifier(cfg *config.Config, logger zerolog.Logger) (*notify.Notifier, error) {
	if cfg.AlertWebhookURL == "" {
		return nil, nil
	}
	var secret signature.Secret
	if cfg.AlertWebhookSecret != "" {
		s, err := signature.ParseSecret(cfg.AlertWebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_WEBHOOK_SECRET: %w", err)
		}
		secret = s
	}
	n, err := notify.New(notify.Config{
		URL:    cfg.AlertWebhookURL,
		Secret: secret,
		Logger: logger.With().Str("component", "notifier").Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating alert notifier: %w", err)
	}
	return n, nil
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		fmt.Printf("\nShutting down server...\n")
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing closing the server")
	default:
		errShutdown <- fmt.Errorf("forcing closing the server: %w", err)
	}
}
