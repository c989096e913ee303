// apiforge server — HTTP API, фоновое выполнение pipelines
// и cron-планировщик в одном процессе.
//
// Переменные окружения:
//
//	API_PORT       порт HTTP сервера (default: 8080)
//	DB_URL         строка подключения PostgreSQL (пустая — без персистентности)
//	RABBITMQ_URL   строка подключения RabbitMQ (пустая — без событий)
//	SCAN_HOST      сканируемый хост (пустой — локальный адрес)
//	SCAN_PORTS     сканируемые порты через запятую (пустой — стандартный набор)
//	REPO_PATH      путь к анализируемому git-репозиторию
//	ARTIFACT_ROOT  корневой каталог артефактов (default: ./artifacts)
//	SCHEDULES      расписания вида "pipeline@cron;..." (пустой — без планировщика)
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/apiforge/internal/api"
	"github.com/shaiso/apiforge/internal/mq"
	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/pipelines"
	"github.com/shaiso/apiforge/internal/repo"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/scheduler"
	"github.com/shaiso/apiforge/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting apiforge-server")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// База данных опциональна: без неё runs не персистятся,
	// а read-endpoints отвечают 503.
	var runRepo *repo.RunRepo
	var store orchestrator.RunStore
	if os.Getenv("DB_URL") != "" {
		pool, err := repo.NewPool(ctx)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("database connected")

		runRepo = repo.NewRunRepo(pool)
		store = runRepo
	} else {
		logger.Warn("DB_URL not set, running without run storage")
	}

	// RabbitMQ опционален: без него события не публикуются.
	var publisher orchestrator.EventPublisher
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		mqConn, err := mq.NewConnection(url, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, events disabled", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			publisher = mq.NewPublisher(mqConn, logger)
		}
	}

	artifactRoot := os.Getenv("ARTIFACT_ROOT")
	if artifactRoot == "" {
		artifactRoot = "./artifacts"
	}

	registry := pipelines.NewRegistry(pipelines.Config{
		Host:         os.Getenv("SCAN_HOST"),
		Ports:        parsePorts(os.Getenv("SCAN_PORTS"), logger),
		RepoPath:     os.Getenv("REPO_PATH"),
		ArtifactRoot: artifactRoot,
		Logger:       logger,
	})

	service, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: registry,
		Store:     store,
		Publisher: publisher,
		Sink:      report.NewFileSink(artifactRoot),
		Metrics:   telemetry.NewMetrics(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	// Планировщик: cron-расписания из SCHEDULES.
	if spec := os.Getenv("SCHEDULES"); spec != "" {
		entries, err := scheduler.ParseSchedules(spec)
		if err != nil {
			logger.Error("invalid SCHEDULES", "error", err)
			os.Exit(1)
		}

		sched := scheduler.New(scheduler.Config{
			Starter: service,
			Entries: entries,
			Logger:  logger,
		})
		go sched.Run(ctx, time.Second)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	api.NewHandler(api.Config{
		Service: service,
		RunRepo: runRepo,
		Logger:  logger,
	}).RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// parsePorts разбирает список портов "8080,8443". Неразборчивые
// значения пропускаются с предупреждением.
func parsePorts(spec string, logger *slog.Logger) []int {
	if spec == "" {
		return nil
	}

	var ports []int
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			logger.Warn("skipping invalid port", "value", raw)
			continue
		}
		ports = append(ports, port)
	}
	return ports
}
