package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheReshkin/events-bot/internal/config"
	"github.com/TheReshkin/events-bot/internal/flow"
	"github.com/TheReshkin/events-bot/internal/navigator"
	"github.com/TheReshkin/events-bot/internal/services"
	"github.com/TheReshkin/events-bot/internal/storage"
	"github.com/TheReshkin/events-bot/internal/telegram"
	"github.com/go-telegram/bot"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	storeAuto     = "auto"
	storePostgres = "postgres"
	storeSQLite   = "sqlite"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("events bot: %v", err)
	}
}

func run() error {
	envFile := pflag.String("env-file", ".env", "path to the .env file")
	storeKind := pflag.String("store", storeAuto, "event store: postgres, sqlite or auto (postgres when DATABASE_URL is set)")
	pflag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		return err
	}

	// Инициализация логгера
	logger, err := newLogger(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация storage и сервисов
	store, err := openStore(ctx, cfg, *storeKind, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Ошибка при закрытии хранилища", zap.Error(err))
		}
	}()

	eventService := services.NewEventService(store, logger)
	userService := services.NewUserService(store, logger)
	flows := flow.NewMachine(flow.NewSessions(), eventService, logger)
	nav := navigator.New(eventService, logger)
	router := telegram.NewRouter(userService, eventService, flows, nav, logger)

	// Инициализация бота
	b, err := bot.New(cfg.Token, bot.WithDefaultHandler(router.Handle))
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	logger.Info("Бот инициализирован", zap.String("bot_name", me.Username))

	if err := telegram.RegisterCommands(ctx, b, logger); err != nil {
		logger.Warn("Продолжаем без списка команд", zap.Error(err))
	}

	metricsServer := startMetrics(cfg.MetricsAddr, logger)

	// Запуск бота
	logger.Info("Бот запущен")
	b.Start(ctx)
	logger.Info("Бот остановлен")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ошибка остановки сервера метрик", zap.Error(err))
		}
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, kind string, logger *zap.Logger) (storage.Storage, error) {
	if kind == storeAuto {
		kind = storeSQLite
		if cfg.UsePostgres() {
			kind = storePostgres
		}
	}

	switch kind {
	case storePostgres:
		store, err := storage.NewPostgresStorage(ctx, cfg.DatabaseURL, storage.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		logger.Info("Используется PostgreSQL", zap.Int32("max_conns", cfg.DBMaxConns))
		return store, nil
	case storeSQLite:
		store, err := storage.NewSQLiteStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("Используется SQLite", zap.String("path", cfg.SQLitePath))
		return store, nil
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

// startMetrics serves /metrics on addr; an empty addr disables it.
func startMetrics(addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Сервер метрик запущен", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Сервер метрик завершился с ошибкой", zap.Error(err))
		}
	}()
	return srv
}
