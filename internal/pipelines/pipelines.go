package pipelines

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/shaiso/apiforge/internal/agent"
	"github.com/shaiso/apiforge/internal/engine"
	"github.com/shaiso/apiforge/internal/orchestrator"
	"github.com/shaiso/apiforge/internal/report"
	"github.com/shaiso/apiforge/internal/stages"
	"github.com/shaiso/apiforge/internal/tools"
)

// Имена встроенных pipelines.
const (
	// PipelineFull — полный цикл: discovery, безопасность, документация,
	// SDK, эскалация.
	PipelineFull = "full"

	// PipelineDiscoveryDocs — только discovery и документация.
	PipelineDiscoveryDocs = "discovery-docs"

	// PipelineCompliance — discovery, безопасность и отчёт без генерации
	// документации и SDK.
	PipelineCompliance = "compliance"

	// PipelineDevExperience — discovery, проверка контрактов, генерация
	// тестов и замер производительности.
	PipelineDevExperience = "dev-experience"
)

// Config — конфигурация реестра pipelines.
type Config struct {
	// Host — сканируемый хост. Пустой — локальный адрес.
	Host string

	// Ports — сканируемые порты. Пустой — стандартный набор.
	Ports []int

	// RepoPath — путь к анализируемому git-репозиторию. Пустой —
	// репозиторий не анализируется.
	RepoPath string

	// ArtifactRoot — корневой каталог артефактов run.
	ArtifactRoot string

	// Agent — генератор текста (default: CannedClient).
	Agent agent.Client

	// Seed — зерно сканера безопасности. 0 — производное от run ID.
	Seed int64

	// Logger — логгер (default: slog.Default).
	Logger *slog.Logger
}

// Registry собирает цепочки встроенных pipelines.
//
// Build создаёт свежую цепочку и хранилище артефактов под конкретный
// run: стадии держат состояние run (каталог артефактов), поэтому
// цепочки не разделяются между runs.
type Registry struct {
	cfg      Config
	builders map[string]builder
}

type builder struct {
	describe string
	build    func(r *Registry, runID uuid.UUID, artifacts *report.ArtifactStore) *engine.Chain
}

// NewRegistry создаёт реестр встроенных pipelines.
func NewRegistry(cfg Config) *Registry {
	if cfg.Agent == nil {
		cfg.Agent = agent.NewCannedClient()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ArtifactRoot == "" {
		cfg.ArtifactRoot = "outputs"
	}

	r := &Registry{cfg: cfg}
	r.builders = map[string]builder{
		PipelineFull: {
			describe: "discovery, security assessment, documentation, SDK generation and escalation",
			build:    (*Registry).buildFull,
		},
		PipelineDiscoveryDocs: {
			describe: "discovery and documentation without security stages",
			build:    (*Registry).buildDiscoveryDocs,
		},
		PipelineCompliance: {
			describe: "discovery, security assessment and security report",
			build:    (*Registry).buildCompliance,
		},
		PipelineDevExperience: {
			describe: "discovery, contract validation, test generation and benchmarking",
			build:    (*Registry).buildDevExperience,
		},
	}
	return r
}

// Names возвращает имена pipelines в алфавитном порядке.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe возвращает описание pipeline.
func (r *Registry) Describe(name string) (string, error) {
	b, ok := r.builders[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", orchestrator.ErrPipelineNotFound, name)
	}
	return b.describe, nil
}

// Has проверяет, зарегистрирован ли pipeline.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Build собирает цепочку pipeline для run.
func (r *Registry) Build(name string, runID uuid.UUID) (*engine.Chain, *report.ArtifactStore, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", orchestrator.ErrPipelineNotFound, name)
	}

	artifacts := report.NewArtifactStore(r.cfg.ArtifactRoot, runID)
	chain := b.build(r, runID, artifacts)
	if err := chain.Validate(); err != nil {
		return nil, nil, err
	}
	return chain, artifacts, nil
}

func (r *Registry) buildFull(runID uuid.UUID, artifacts *report.ArtifactStore) *engine.Chain {
	c := engine.NewChain()

	c.MustRegister(engine.Stage{
		ID:      stages.StageDiscover,
		Handler: r.discoveryStage(),
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageAssessSecurity,
		Predecessor: stages.StageDiscover,
		Handler:     r.securityStage(runID),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
		BranchTo: func(st *engine.State) string {
			if st.Counter(stages.CounterCriticalIssues) > 0 {
				return stages.StageSecurityReport
			}
			return ""
		},
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageDocument,
		Predecessor: stages.StageAssessSecurity,
		Handler:     stages.NewDocumentationStage(tools.NewDocGenerator(r.cfg.Agent), artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageGenerateSDKs,
		Predecessor: stages.StageDocument,
		Handler:     stages.NewSDKStage(tools.NewSDKGenerator(), artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageSecurityReport,
		Predecessor: stages.StageGenerateSDKs,
		Handler:     stages.NewSecurityReportStage(r.cfg.Agent, artifacts, r.cfg.Logger),
		SkipIf: func(st *engine.State) bool {
			return st.Counter(stages.CounterCriticalIssues) == 0
		},
		SkipReason: "no critical findings",
	})

	return c
}

func (r *Registry) buildDiscoveryDocs(_ uuid.UUID, artifacts *report.ArtifactStore) *engine.Chain {
	c := engine.NewChain()

	c.MustRegister(engine.Stage{
		ID:      stages.StageDiscover,
		Handler: r.discoveryStage(),
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageDocument,
		Predecessor: stages.StageDiscover,
		Handler:     stages.NewDocumentationStage(tools.NewDocGenerator(r.cfg.Agent), artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageGenerateSDKs,
		Predecessor: stages.StageDocument,
		Handler:     stages.NewSDKStage(tools.NewSDKGenerator(), artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})

	return c
}

func (r *Registry) buildCompliance(runID uuid.UUID, artifacts *report.ArtifactStore) *engine.Chain {
	c := engine.NewChain()

	c.MustRegister(engine.Stage{
		ID:      stages.StageDiscover,
		Handler: r.discoveryStage(),
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageAssessSecurity,
		Predecessor: stages.StageDiscover,
		Handler:     r.securityStage(runID),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	// В compliance отчёт пишется всегда, когда была оценка.
	c.MustRegister(engine.Stage{
		ID:          stages.StageSecurityReport,
		Predecessor: stages.StageAssessSecurity,
		Handler:     stages.NewSecurityReportStage(r.cfg.Agent, artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})

	return c
}

func (r *Registry) buildDevExperience(runID uuid.UUID, artifacts *report.ArtifactStore) *engine.Chain {
	c := engine.NewChain()

	c.MustRegister(engine.Stage{
		ID:      stages.StageDiscover,
		Handler: r.discoveryStage(),
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageValidateContracts,
		Predecessor: stages.StageDiscover,
		Handler:     stages.NewContractStage(tools.NewContractValidator(), r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageGenerateTests,
		Predecessor: stages.StageValidateContracts,
		Handler:     stages.NewTestGenStage(tools.NewTestGenerator(), artifacts, r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})
	c.MustRegister(engine.Stage{
		ID:          stages.StageBenchmark,
		Predecessor: stages.StageGenerateTests,
		Handler:     stages.NewBenchmarkStage(tools.NewPerformanceProbe(r.runRand(runID)), r.cfg.Logger),
		SkipIf:      noAPIs,
		SkipReason:  "no APIs discovered",
	})

	return c
}

func (r *Registry) discoveryStage() *stages.DiscoveryStage {
	var gitScanner *tools.GitScanner
	if r.cfg.RepoPath != "" {
		gitScanner = tools.NewGitScanner()
	}
	scanner := tools.NewNetScanner()
	if len(r.cfg.Ports) > 0 {
		scanner = scanner.WithPorts(r.cfg.Ports)
	}
	return stages.NewDiscoveryStage(stages.DiscoveryConfig{
		Scanner:  scanner,
		Git:      gitScanner,
		Host:     r.cfg.Host,
		RepoPath: r.cfg.RepoPath,
		Logger:   r.cfg.Logger,
	})
}

func (r *Registry) securityStage(runID uuid.UUID) *stages.SecurityStage {
	return stages.NewSecurityStage(tools.NewSecurityScanner(r.runRand(runID)), r.cfg.Logger)
}

// runRand — источник случайности стадии.
func (r *Registry) runRand(runID uuid.UUID) *rand.Rand {
	seed := r.cfg.Seed
	if seed == 0 {
		// Зерно производно от run ID: повтор того же run воспроизводим.
		seed = int64(binary.BigEndian.Uint64(runID[:8]))
	}
	return rand.New(rand.NewSource(seed))
}

// noAPIs — общий skip-предикат стадий, зависящих от discovery.
func noAPIs(st *engine.State) bool {
	return st.Counter(stages.CounterAPICount) == 0
}
