package stages

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shaiso/apiforge/internal/domain"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/tools"
)

// DiscoveryStage находит API в сети и в git-репозитории.
//
// Результат — DiscoveryResult; счётчик CounterAPICount получает
// количество найденных API и управляет пропуском следующих стадий.
type DiscoveryStage struct {
	scanner  *tools.NetScanner
	git      *tools.GitScanner
	host     string
	repoPath string
	logger   *slog.Logger
}

// DiscoveryConfig — конфигурация DiscoveryStage.
type DiscoveryConfig struct {
	// Scanner — сетевой сканер (обязательно).
	Scanner *tools.NetScanner

	// Git — git-сканер. Если nil, репозиторий не анализируется.
	Git *tools.GitScanner

	// Host — сканируемый хост. Пустой — локальный адрес хоста.
	Host string

	// RepoPath — путь к репозиторию. Пустой — анализ пропускается.
	RepoPath string

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// NewDiscoveryStage создаёт стадию discovery.
func NewDiscoveryStage(cfg DiscoveryConfig) *DiscoveryStage {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscoveryStage{
		scanner:  cfg.Scanner,
		git:      cfg.Git,
		host:     cfg.Host,
		repoPath: cfg.RepoPath,
		logger:   logger,
	}
}

// Execute реализует engine.Handler.
func (s *DiscoveryStage) Execute(ctx context.Context, st *engine.State) (any, error) {
	host := s.host
	if host == "" {
		host = tools.LocalIP()
	}

	apis, err := s.scanner.ScanHost(ctx, host)
	if err != nil {
		return nil, err
	}
	s.logger.Info("network scan finished", "host", host, "apis", len(apis))

	result := &domain.DiscoveryResult{APIs: apis}

	if s.git != nil && s.repoPath != "" {
		inv, err := s.git.Scan(s.repoPath)
		if err != nil {
			return nil, err
		}
		result.Repo = inv
		for _, spec := range inv.APIFiles {
			result.APIs = append(result.APIs, domain.DiscoveredAPI{
				Name:     specName(spec),
				Source:   "repository",
				SpecFile: spec,
			})
		}
		s.logger.Info("repository scan finished",
			"path", s.repoPath,
			"api_files", len(inv.APIFiles),
			"source_files", inv.SourceFiles,
		)
	}

	st.SetCounter(CounterAPICount, len(result.APIs))
	return result, nil
}

// specName превращает путь спецификации в имя сервиса.
func specName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
