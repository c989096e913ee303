package domain

import "time"

// Типизированные результаты стадий. Обработчики возвращают эти структуры
// вместо сырого текста — никакого разбора строк на границах стадий.

// DiscoveredAPI — найденный API сервис.
type DiscoveredAPI struct {
	// Name — имя сервиса (из probe или имени файла спецификации).
	Name string `json:"name"`

	// Source — источник обнаружения: "network" или "repository".
	Source string `json:"source"`

	// BaseURL — базовый URL сервиса (для network-источника).
	BaseURL string `json:"base_url,omitempty"`

	// Port — порт, на котором сервис отвечает.
	Port int `json:"port,omitempty"`

	// SpecFile — путь к файлу спецификации (для repository-источника).
	SpecFile string `json:"spec_file,omitempty"`

	// Endpoints — обнаруженные endpoints.
	Endpoints []ProbedEndpoint `json:"endpoints,omitempty"`
}

// ProbedEndpoint — результат пробы одного endpoint.
type ProbedEndpoint struct {
	// Path — путь endpoint (например, "/api", "/swagger").
	Path string `json:"path"`

	// StatusCode — HTTP статус ответа.
	StatusCode int `json:"status_code"`

	// ContentType — значение Content-Type ответа.
	ContentType string `json:"content_type,omitempty"`

	// JSON — true, если endpoint отвечает application/json.
	JSON bool `json:"json"`
}

// RepoInventory — результат анализа git-репозитория.
type RepoInventory struct {
	// Path — путь к репозиторию.
	Path string `json:"path"`

	// Branch — текущая ветка.
	Branch string `json:"branch,omitempty"`

	// APIFiles — файлы спецификаций API (openapi/swagger/proto).
	APIFiles []string `json:"api_files,omitempty"`

	// SourceFiles — количество файлов исходного кода.
	SourceFiles int `json:"source_files"`

	// ConfigFiles — конфигурационные файлы.
	ConfigFiles []string `json:"config_files,omitempty"`

	// Commits — последние коммиты.
	Commits []CommitInfo `json:"commits,omitempty"`
}

// CommitInfo — краткая информация о коммите.
type CommitInfo struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	When    time.Time `json:"when"`
}

// DiscoveryResult — итог стадии discovery.
type DiscoveryResult struct {
	// APIs — все найденные API (сеть + репозиторий).
	APIs []DiscoveredAPI `json:"apis"`

	// Repo — инвентаризация репозитория, если он анализировался.
	Repo *RepoInventory `json:"repo,omitempty"`
}

// Severity — уровень серьёзности находки.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Vulnerability — одна находка сканера безопасности.
type Vulnerability struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	CVSS        float64  `json:"cvss_score"`
	Category    string   `json:"owasp_category"`
}

// SecurityAssessment — итог стадии оценки безопасности.
type SecurityAssessment struct {
	// Target — что сканировалось.
	Target string `json:"target"`

	// Findings — все находки.
	Findings []Vulnerability `json:"findings"`

	// Critical/High/Medium/Low — количество находок по уровням.
	Critical int `json:"critical_findings"`
	High     int `json:"high_findings"`
	Medium   int `json:"medium_findings"`
	Low      int `json:"low_findings"`

	// Passed — true, если критических находок нет.
	Passed bool `json:"passed"`
}

// Total возвращает общее количество находок.
func (a *SecurityAssessment) Total() int {
	return len(a.Findings)
}

// DocumentationResult — итог стадии генерации документации.
type DocumentationResult struct {
	// Format — формат документации (например, "OpenAPI 3.0").
	Format string `json:"format"`

	// EndpointsDocumented — количество задокументированных endpoints.
	EndpointsDocumented int `json:"endpoints_documented"`

	// Files — записанные файлы документации (относительно каталога run).
	Files []string `json:"files,omitempty"`
}

// SDKResult — итог стадии генерации SDK.
type SDKResult struct {
	// Languages — языки, для которых сгенерированы клиенты.
	Languages []string `json:"languages"`

	// Files — записанные файлы SDK (относительно каталога run).
	Files []string `json:"files,omitempty"`
}

// SecurityReportResult — итог стадии эскалационного отчёта безопасности.
type SecurityReportResult struct {
	// CriticalCount — количество критических находок.
	CriticalCount int `json:"critical_count"`

	// File — записанный файл отчёта (относительно каталога run).
	File string `json:"file,omitempty"`
}

// ContractValidation — проверка контракта одного API.
type ContractValidation struct {
	// Target — проверяемый API.
	Target string `json:"target"`

	// Passed — true, если блокирующих нарушений нет.
	Passed bool `json:"passed"`

	// Errors — блокирующие нарушения контракта.
	Errors []string `json:"errors,omitempty"`

	// Warnings — не блокирующие замечания.
	Warnings []string `json:"warnings,omitempty"`
}

// ContractValidationResult — итог стадии проверки контрактов.
type ContractValidationResult struct {
	// Validations — проверки по каждому API.
	Validations []ContractValidation `json:"validations"`

	// IssuesFound — общее количество блокирующих нарушений.
	IssuesFound int `json:"issues_found"`

	// Passed — true, если все контракты прошли проверку.
	Passed bool `json:"passed"`
}

// TestSuite — сгенерированный набор тестов для одного API.
type TestSuite struct {
	// Target — API, для которого сгенерированы тесты.
	Target string `json:"target"`

	// UnitTests/IntegrationTests/EndToEndTests — количество тестов по видам.
	UnitTests        int `json:"unit_tests"`
	IntegrationTests int `json:"integration_tests"`
	EndToEndTests    int `json:"end_to_end_tests"`

	// Coverage — оценка покрытия в процентах.
	Coverage int `json:"test_coverage"`

	// File — записанный файл тестов (относительно каталога run).
	File string `json:"file,omitempty"`
}

// TestGenResult — итог стадии генерации тестов.
type TestGenResult struct {
	// Framework — целевой тестовый фреймворк.
	Framework string `json:"framework"`

	// Suites — наборы тестов по каждому API.
	Suites []TestSuite `json:"suites"`
}

// PerformanceSample — метрики производительности одного API.
type PerformanceSample struct {
	// Target — измеряемый API.
	Target string `json:"target"`

	// Латентность в миллисекундах.
	AvgResponseMS int `json:"avg_response_time_ms"`
	P50LatencyMS  int `json:"p50_latency_ms"`
	P95LatencyMS  int `json:"p95_latency_ms"`
	P99LatencyMS  int `json:"p99_latency_ms"`

	// RequestsPerSecond — пропускная способность.
	RequestsPerSecond int `json:"requests_per_second"`

	// ErrorRate — доля ошибочных ответов (0..1).
	ErrorRate float64 `json:"error_rate"`
}

// BenchmarkResult — итог стадии замера производительности.
type BenchmarkResult struct {
	// Samples — замеры по каждому API.
	Samples []PerformanceSample `json:"samples"`

	// SlowestTarget — API с наибольшей p99-латентностью.
	SlowestTarget string `json:"slowest_target,omitempty"`
}
