// Command polyatrim-server provides a REST API for poly-A trimming.
//
// Usage:
//
//	polyatrim-server [options]
//
// Options:
//
//	-config   YAML configuration file
//	-addr     Address to listen on (overrides the config, default :8080)
//	-model    Model file (overrides the config, default: built-in model)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aria-lang/polyatrim-go/api/handlers"
	"github.com/aria-lang/polyatrim-go/api/middleware"
	"github.com/aria-lang/polyatrim-go/internal/config"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/logging"
	"github.com/aria-lang/polyatrim-go/internal/metrics"
	"github.com/aria-lang/polyatrim-go/pkg/polyatrim"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	addr := flag.String("addr", "", "Address to listen on")
	modelPath := flag.String("model", "", "Model file")
	flag.Parse()

	if err := run(*configPath, *addr, *modelPath); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, addr, modelPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if modelPath != "" {
		cfg.Model = modelPath
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	model := hmm.DefaultModel()
	if cfg.Model != "" {
		if model, err = polyatrim.LoadModel(cfg.Model); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(cfg, model, m, reg, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("polyatrim API server starting", "addr", cfg.Server.Addr, "version", polyatrim.Version())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server.SetKeepAlivesEnabled(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown: %w", err)
	}
	logger.Info("server stopped")
	return <-errc
}

func newRouter(cfg config.Config, model *hmm.Model, m *metrics.Metrics, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger, m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	handlers.New(handlers.Options{
		Model:    model,
		IsoSeq:   cfg.IsoSeq,
		Workers:  cfg.Workers,
		MaxReads: cfg.Server.MaxReads,
		Metrics:  m,
		Logger:   logger,
	}).Routes(r)

	return r
}
