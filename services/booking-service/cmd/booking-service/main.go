package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/db"
	"github.com/md-rashed-zaman/agentbook/libs/grpcx"
	"github.com/md-rashed-zaman/agentbook/libs/httpx"
	"github.com/md-rashed-zaman/agentbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/agentbook/libs/otel"
	"github.com/md-rashed-zaman/agentbook/libs/runtime"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/directory"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/docs"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/reservations"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/agentbook/services/booking-service/migrations"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// intSetting reads an integer variable and warns when a set value is rejected.
func intSetting(logger *slog.Logger, key string, fallback, min, max int) int {
	n := config.Int(key, fallback, min, max)
	raw := strings.TrimSpace(os.Getenv(key))
	if raw != "" && raw != strconv.Itoa(n) {
		logger.Warn("invalid setting; using default", "key", key, "value", raw, "default", fallback)
	}
	return n
}

func reservationsConfig(logger *slog.Logger) reservations.Config {
	cfg := reservations.DefaultConfig()
	hours := availability.Hours{
		Open:  intSetting(logger, "BUSINESS_OPEN_HOUR", cfg.Hours.Open, 0, 23),
		Close: intSetting(logger, "BUSINESS_CLOSE_HOUR", cfg.Hours.Close, 1, 24),
	}
	if hours.Valid() {
		cfg.Hours = hours
	} else {
		logger.Warn("invalid business hours; using defaults", "open", hours.Open, "close", hours.Close)
	}
	cfg.MaxDays = intSetting(logger, "AVAILABILITY_MAX_DAYS", cfg.MaxDays, 1, 3660)
	cfg.DefaultDays = intSetting(logger, "AVAILABILITY_DEFAULT_DAYS", cfg.DefaultDays, 0, cfg.MaxDays)
	cfg.MaxSlots = intSetting(logger, "AVAILABILITY_MAX_SLOTS", cfg.MaxSlots, 1, 1000)
	return cfg
}

// skipProbes applies m to everything except the liveness and readiness probes.
func skipProbes(m httpx.Middleware) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		limited := m(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func main() {
	config.LoadDotEnv()

	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	// GRPC_PORT set to "" or "0" disables the health server; unset uses 9090.
	grpcPort := "9090"
	if raw, ok := os.LookupEnv("GRPC_PORT"); ok {
		grpcPort = strings.TrimSpace(raw)
	}
	if grpcPort == "0" {
		grpcPort = ""
	}
	if grpcPort != "" {
		if grpcPort, err = config.Port("GRPC_PORT", grpcPort); err != nil {
			panic(err)
		}
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("DB_MIGRATE_ON_START", false) {
		applied, err := db.Migrate(ctx, pool, migrations.FS)
		if err != nil {
			logger.Error("migration failed", "err", err)
			panic(err)
		}
		logger.Info("migrations applied", "files", applied)
	}

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}

	brokers := kafkax.SplitBrokers(config.String("KAFKA_BROKERS", ""))
	if len(brokers) > 0 {
		writer := kafkax.NewWriter(brokers)
		defer func() { _ = writer.Close() }()
		publisher := outbox.NewPublisher(pool, writer, logger, outbox.PublisherConfig{
			PollEvery: config.Duration("OUTBOX_POLL_MS", 2*time.Second, time.Millisecond),
			BatchSize: intSetting(logger, "OUTBOX_BATCH_SIZE", 50, 1, 1000),
		})
		go publisher.Run(ctx)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	} else {
		logger.Info("KAFKA_BROKERS not set; outbox publisher disabled")
	}

	perMinute := intSetting(logger, "RATE_LIMIT_PER_MINUTE", 120, 1, 1_000_000)
	var limit httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       intSetting(logger, "REDIS_DB", 0, 0, 15),
		})
		defer func() { _ = rdb.Close() }()
		limiter := httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, service)
		limit = limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	} else {
		limit = httpx.NewRateLimiter(perMinute, intSetting(logger, "RATE_LIMIT_BURST", 20, 1, 10_000)).Middleware()
	}

	baseURL := config.String("PUBLIC_BASE_URL", "http://localhost:"+port)
	documents, err := docs.Load(baseURL)
	if err != nil {
		logger.Error("openapi documents failed to load", "err", err)
		panic(err)
	}

	repo := storage.NewRepository(pool)
	api := handlers.NewAPI(handlers.Config{
		Reservations: reservations.NewService(repo, reservationsConfig(logger)),
		Directory:    directory.NewService(repo),
		Docs:         documents,
		Logger:       logger,
		BaseURL:      baseURL,
	})

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	api.Register(mux)

	cors := httpx.PublicAPIPolicy()
	cors.AllowedOrigins = config.List("CORS_ALLOWED_ORIGINS", "*")

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(cors),
		skipProbes(limit),
		httpx.WithBodyLimit(int64(intSetting(logger, "REQUEST_BODY_LIMIT_BYTES", 1<<20, 1, 64<<20))),
		httpx.WithTimeout(time.Duration(intSetting(logger, "REQUEST_TIMEOUT_SECONDS", 10, 1, 300))*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if grpcPort != "" {
		healthChecks := make([]grpcx.HealthCheck, 0, len(readyChecks))
		for _, c := range readyChecks {
			healthChecks = append(healthChecks, grpcx.HealthCheck{Name: c.Name, Check: c.Check})
		}
		health := grpcx.NewHealthServer(service, logger, healthChecks...)
		go health.Run(ctx, 10*time.Second)
		go func() {
			logger.Info("grpc health server starting", "addr", ":"+grpcPort)
			if err := health.Serve(":" + grpcPort); err != nil {
				logger.Error("grpc health server error", "err", err)
			}
		}()
		defer health.Stop()
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "base_url", baseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
