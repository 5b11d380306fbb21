// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"market-entry-workers/internal/bootstrap"
	"market-entry-workers/internal/common/camunda"
	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/database"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/observability"
	"market-entry-workers/internal/handoff"

	ci "market-entry-workers/internal/workers/market-entry/classify-intent"
	prt "market-entry-workers/internal/workers/market-entry/plan-research-tasks"
)

// worker is what every registered handler exposes to the manager.
type worker interface {
	Register() error
	Close()
	GetTaskType() string
	IsEnabled() bool
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.NewFromConfig(cfg.Logging)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
		zapLog.Warn("logging output unavailable, falling back to stdout", zap.Error(err))
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).With(map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
	})

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.Observability)
	if err != nil {
		zapLog.Fatal("observability setup failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(ctx)
	}()

	ctx := context.Background()

	// --- Zeebe with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("address", cfg.Camunda.BrokerAddress))

	// --- Redis with retry, only when plans are handed off ---
	var redis *database.RedisClient
	var store *handoff.Store
	if cfg.Handoff.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		store = handoff.NewStore(redis, cfg.Handoff)
		zapLog.Info("Redis connected successfully", zap.String("address", cfg.Redis.Address))
	}

	// --- Classification chain ---
	service, closeBackend, err := bootstrap.NewService(ctx, cfg, log, bootstrap.Options{Observability: obs})
	if err != nil {
		zapLog.Fatal("classifier setup failed", zap.Error(err))
	}
	defer closeBackend()

	// --- Workers ---
	classifyHandler, err := ci.NewHandler(ci.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Classifier:    service,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("classify-intent worker setup failed", zap.Error(err))
	}

	planOpts := prt.HandlerOptions{
		AppConfig:     cfg,
		Camunda:       zeebe,
		Logger:        log,
		Planner:       service,
		Observability: obs,
	}
	if store != nil {
		planOpts.Publisher = store
	}
	planHandler, err := prt.NewHandler(planOpts)
	if err != nil {
		zapLog.Fatal("plan-research-tasks worker setup failed", zap.Error(err))
	}

	workers := []worker{classifyHandler, planHandler}
	registered := 0
	for _, w := range workers {
		if err := w.Register(); err != nil {
			zapLog.Fatal("worker registration failed", zap.String("taskType", w.GetTaskType()), zap.Error(err))
		}
		if w.IsEnabled() {
			registered++
		}
	}
	zapLog.Info("Workers registered", zap.Int("count", registered))

	// --- Health & Metrics Server ---
	var readyRedis redisPinger
	if redis != nil {
		readyRedis = redis
	}
	server := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           newHealthMux(zeebe, readyRedis),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

type pinger interface {
	HealthCheck(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// newHealthMux serves liveness, readiness and metrics. Readiness probes the
// broker and, when configured, redis in parallel.
func newHealthMux(zeebe pinger, redis redisPinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		if zeebe != nil {
			g.Go(func() error { return zeebe.HealthCheck(gctx) })
		}
		if redis != nil {
			g.Go(func() error {
				if err := redis.Ping(gctx); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
