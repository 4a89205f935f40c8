// Command server runs the reward-action validation service.
//
// main wires the storage backends (in-memory for local development,
// postgres + redis when configured), the validation orchestrator, and the
// HTTP surface. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"coinguard/internal/platform/config"
	"coinguard/internal/platform/database"
	"coinguard/internal/platform/health"
	"coinguard/internal/platform/logger"
	"coinguard/internal/platform/redis"
	"coinguard/internal/reward/handler"
	"coinguard/internal/reward/ledger"
	"coinguard/internal/reward/metrics"
	"coinguard/internal/reward/seed"
	"coinguard/internal/reward/service/validator"
	"coinguard/internal/reward/store/events"
	"coinguard/internal/reward/store/flags"
	"coinguard/internal/reward/store/rules"
	"coinguard/internal/reward/tracer"
	"coinguard/internal/token"
	"coinguard/pkg/platform/audit"
	"coinguard/pkg/platform/middleware/admin"
	"coinguard/pkg/platform/middleware/auth"
	"coinguard/pkg/platform/middleware/metadata"
	"coinguard/pkg/platform/middleware/request"
	"coinguard/pkg/platform/middleware/requesttime"
	"coinguard/pkg/platform/validation"
	"coinguard/pkg/secrets"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing coinguard",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.DatabaseURL != "",
		"redis", cfg.Redis.URL != "",
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Storage. Postgres when configured, in-memory otherwise.
	var (
		ruleStore  rules.Store
		eventStore events.Store
		flagStore  flags.Store
		awarder    validator.Awarder
		auditStore audit.Store
	)
	if pool != nil {
		ruleStore = rules.NewPostgres(pool.DB())
		eventStore = events.NewPostgres(pool.DB())
		flagStore = flags.NewPostgres(pool.DB())
		awarder = ledger.NewPostgres(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
	} else {
		memRules := rules.NewMemoryStore()
		if err := seed.New(memRules, log).SeedRules(context.Background()); err != nil {
			return err
		}
		memEvents := events.NewMemoryStore()
		ruleStore = memRules
		eventStore = memEvents
		flagStore = flags.NewMemoryStore()
		awarder = ledger.NewMemory(memEvents)
		auditStore = audit.NewInMemoryStore()
	}

	if redisClient != nil {
		ruleStore = rules.NewRedisCache(ruleStore, redisClient.Client,
			rules.WithCacheLogger(log),
		)
	}

	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
		audit.WithPublisherMetrics(audit.NewMetrics()),
	)
	defer auditPublisher.Close()

	svc, err := validator.New(ruleStore, eventStore, flagStore, awarder,
		validator.WithLogger(log),
		validator.WithAuditPublisher(auditPublisher),
		validator.WithMetrics(metrics.New()),
		validator.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		return err
	}

	jwtService := token.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	h := handler.New(svc, ruleStore, flagStore, log)

	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	router := newRouter(cfg, log, h, healthHandler, jwtService)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if redisClient != nil {
		group.Go(func() error {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					redisClient.RecordPoolStats()
				}
			}
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newRouter(cfg config.Server, log *slog.Logger, h *handler.Handler, healthHandler *health.Handler, jwtService *token.JWTService) chi.Router {
	r := chi.NewRouter()

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(&metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(request.Logger(log))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.BodyLimit(validation.MaxBodySize))

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.RequireAuth(token.NewMiddlewareValidator(jwtService), log))
		h.Register(r)
	})

	r.Group(func(r chi.Router) {
		adminKeyHash := cfg.AdminKeyHash
		if adminKeyHash == "" {
			// Local development fallback. Logged loudly so it cannot
			// sneak into production unnoticed.
			key, err := secrets.Generate()
			if err == nil {
				if hash, hashErr := secrets.Hash(key); hashErr == nil {
					adminKeyHash = hash
					log.Warn("ADMIN_KEY_HASH not set, generated ephemeral admin key", "key", key)
				}
			}
		}
		r.Use(admin.RequireAdminKey(adminKeyHash, log))
		h.RegisterInternal(r)
	})

	return r
}
