// apiforge one-shot runner — выполняет pipeline синхронно
// и печатает итоговый отчёт в stdout.
//
// Использование:
//
//	apiforge-run [-pipeline NAME] [-host HOST] [-repo PATH] [-artifacts DIR]
//
// Подходит для CI и локальной отладки: не требует базы данных,
// RabbitMQ и HTTP сервера.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/pipelines"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/telemetry"
)

func main() {
	pipeline := flag.String("pipeline", pipelines.PipelineFull, "pipeline to execute")
	host := flag.String("host", "", "host to scan (default: local address)")
	repoPath := flag.String("repo", "", "path to a git repository to analyze")
	artifactRoot := flag.String("artifacts", "./artifacts", "artifact root directory")
	flag.Parse()

	logger := telemetry.SetupLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := pipelines.NewRegistry(pipelines.Config{
		Host:         *host,
		RepoPath:     *repoPath,
		ArtifactRoot: *artifactRoot,
		Logger:       logger,
	})

	service, err := orchestrator.NewService(orchestrator.ServiceConfig{
		Pipelines: registry,
		Sink:      report.NewFileSink(*artifactRoot),
		Metrics:   telemetry.NewMetrics(),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	rep, err := service.ExecuteRun(ctx, *pipeline)
	if err != nil && rep == nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}

	// Частично провалившийся run завершает процесс ненулевым кодом.
	if err != nil {
		os.Exit(1)
	}
}
