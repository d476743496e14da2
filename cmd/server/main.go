package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credwallet/internal/agent"
	"credwallet/internal/agent/store"
	"credwallet/internal/credential/card"
	"credwallet/internal/credential/classify"
	"credwallet/internal/credential/lifecycle"
	credmetrics "credwallet/internal/credential/metrics"
	"credwallet/internal/credential/resolver"
	"credwallet/internal/platform/config"
	"credwallet/internal/platform/errbus"
	"credwallet/internal/platform/httpserver"
	"credwallet/internal/platform/logger"
	"credwallet/internal/platform/redis"
	"credwallet/internal/platform/tracer"
	httptransport "credwallet/internal/transport/http"
	"credwallet/internal/workflow/content"
	"credwallet/internal/workflow/fields"
	"credwallet/internal/workflow/menu"
	wfmetrics "credwallet/internal/workflow/metrics"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/schema"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Behavior lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("wallet core stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var tr tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing {
		tr = tracer.NewOTel()
	}

	// Records: Redis when configured, memory otherwise.
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var records store.Store = store.NewInMemory()
	var health httptransport.HealthFunc
	if redisClient != nil {
		defer redisClient.Close()
		records = store.NewRedis(redisClient.Client)
		health = redisClient.Health
		log.Info("credential records stored in redis")
	} else {
		log.Warn("REDIS_URL not set; credential records are kept in memory")
	}

	wallet, err := agent.New(records, agent.NewLoopback(log), agent.WithLogger(log))
	if err != nil {
		return err
	}

	// Error channel: the UI shell subscribes over its own transport; the
	// process log is always a subscriber.
	bus := errbus.New(errbus.WithLogger(log))
	events, unsubscribe := bus.Subscribe(cfg.ErrorBuffer)
	defer unsubscribe()
	go func() {
		for ev := range events {
			log.Info("user-facing error", "event_id", ev.ID.String(), "code", ev.Code, "title", ev.Title)
		}
	}()

	cm := credmetrics.New(reg)
	lc, err := lifecycle.New(wallet, bus,
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(cm),
		lifecycle.WithTracer(tr),
	)
	if err != nil {
		return err
	}
	res, err := resolver.New(wallet,
		resolver.WithLogger(log),
		resolver.WithMetrics(cm),
		resolver.WithTracer(tr),
	)
	if err != nil {
		return err
	}
	defer res.Wait()
	presenter, err := card.NewPresenter(lc, res, card.WithClassifier(classify.New(cfg.IssuerMarkers...)))
	if err != nil {
		return err
	}

	if all, err := wallet.GetAll(ctx); err == nil {
		if _, err := lc.ReconcileAll(ctx, all); err != nil {
			log.Warn("startup reconciliation incomplete", "error", err)
		}
	}

	contents := registry.NewContentRegistry()
	if err := content.RegisterDefaults(contents); err != nil {
		return err
	}
	fieldRegistry := registry.NewFieldRegistry()
	if err := fields.RegisterDefaults(fieldRegistry); err != nil {
		return err
	}
	wm := wfmetrics.New(reg)
	assembler, err := menu.New(contents, fieldRegistry, menu.WithLogger(log), menu.WithMetrics(wm))
	if err != nil {
		return err
	}
	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	menus, err := httptransport.NewMenuHandler(validator, assembler, menu.NewViewCache(cfg.ViewTTL), httptransport.NewLogSink(log), wm, log)
	if err != nil {
		return err
	}
	credentials, err := httptransport.NewCredentialHandler(wallet, lc, presenter, log)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(log, httptransport.Deps{
		Menus:       menus,
		Credentials: credentials,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Health:      health,
	})
	srv := httpserver.New(cfg.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting wallet core", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
