package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/taskhub/internal/api/handler"
	"github.com/xela07ax/taskhub/internal/api/server"
	"github.com/xela07ax/taskhub/internal/api/service"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"github.com/xela07ax/taskhub/internal/infra/auth"
	"github.com/xela07ax/taskhub/internal/infra/notify"
	"github.com/xela07ax/taskhub/internal/repository/memory"
	"github.com/xela07ax/taskhub/internal/repository/postgres"
)

const startupAttempts = 10

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("taskhub stopped with error", zap.Error(err))
	}
	logger.Info("taskhub exited properly")
}

func run(ctx context.Context, cfg *infra.Config, logger *zap.Logger) error {
	// 1. Ключи подписи
	privateKey, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		return err
	}
	publicKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return err
	}
	issuer, err := auth.NewTokenIssuer(privateKey, cfg.Auth.Issuer, cfg.Auth.TokenTTL, time.Now)
	if err != nil {
		return err
	}
	validator := auth.NewValidator(publicKey, cfg.Auth.Issuer, time.Now)

	// 2. Health поднимаем первым, чтобы оркестратор видел NOT_SERVING во время старта
	health := server.NewHealthServer(logger)
	healthLis, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.HealthPort)))
	if err != nil {
		return fmt.Errorf("listen health: %w", err)
	}
	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	healthDone := make(chan error, 1)
	go func() { healthDone <- health.Serve(healthCtx, healthLis) }()

	// 3. Хранилище
	store, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Сигналы об изменении учеток
	notifier, closeNotifier, err := openNotifier(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// 5. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infra.NewMetrics(reg)

	// 6. Сервисы (Dependency Injection)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	users := service.NewUserService(store, hasher, notifier, metrics, logger)
	authSvc, err := service.NewAuthService(store, hasher, issuer, metrics, logger)
	if err != nil {
		return err
	}

	if cfg.Bootstrap.AdminName != "" {
		created, err := users.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("name", cfg.Bootstrap.AdminName))
		}
	}

	api := server.NewAPIServer(logger, validator, metrics, reg, server.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, logger),
		Users:    handler.NewUserHandler(users, logger),
		Projects: handler.NewProjectHandler(service.NewProjectService(store, logger), logger),
		Tasks:    handler.NewTaskHandler(service.NewTaskService(store, logger), logger),
	})

	// 7. HTTP
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	httpDone := make(chan error, 1)
	go func() {
		logger.Info("taskhub API started", zap.String("address", srv.Addr), zap.String("storage", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpDone <- err
			return
		}
		httpDone <- nil
	}()
	health.SetServing(true)

	// 8. Graceful Shutdown
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("taskhub stopping...")
	case runErr = <-httpDone:
		logger.Error("http server failed", zap.Error(runErr))
	case runErr = <-healthDone:
		logger.Error("health server failed", zap.Error(runErr))
	}
	health.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	stopHealth()

	return runErr
}

// openStore выбирает хранилище по конфигу. Для postgres ждет базу и накатывает миграции.
func openStore(ctx context.Context, cfg infra.DatabaseConfig, logger *zap.Logger) (domain.Store, func(), error) {
	if cfg.Driver == infra.DriverMemory {
		logger.Warn("using in-memory storage, data will not survive restart")
		return memory.New(), func() {}, nil
	}

	db, err := postgres.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewStore(db)

	if err := infra.WaitFor(ctx, logger, "postgres", startupAttempts, store.Ping); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, func() { _ = db.Close() }, nil
}

// openNotifier подключает Redis, если он задан. Без Redis сигналы не публикуются.
func openNotifier(ctx context.Context, cfg infra.RedisConfig, logger *zap.Logger) (service.IdentityNotifier, func(), error) {
	if cfg.Addr == "" {
		logger.Info("redis is not configured, identity signals disabled")
		return notify.Noop{}, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := infra.WaitFor(ctx, logger, "redis", startupAttempts, ping); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return notify.NewRedisPublisher(rdb, logger), func() { _ = rdb.Close() }, nil
}
