package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ошибки агентов.
var (
	// ErrEmptyPrompt — пустой prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// Profile — описание роли агента для генерации текста.
//
// Стадии pipeline используют профили как шаблон обращения к Client:
// кто пишет текст, с какой целью и в каком тоне.
type Profile struct {
	// Role — роль агента (например, "API Documentation Writer").
	Role string

	// Goal — цель, которую преследует агент.
	Goal string

	// Backstory — контекст, задающий тон генерации.
	Backstory string
}

// Client — генератор текста по prompt от имени профиля.
//
// Интерфейс намеренно узкий: стадии собирают prompt сами, а клиент
// лишь возвращает текст. Подключение внешнего генератора сводится
// к одной реализации этого интерфейса.
type Client interface {
	Generate(ctx context.Context, profile Profile, prompt string) (string, error)
}

// CannedClient — детерминированный клиент без внешних вызовов.
//
// Возвращает структурированный текст из профиля и prompt. Используется
// как реализация по умолчанию и в тестах.
type CannedClient struct{}

// NewCannedClient создаёт CannedClient.
func NewCannedClient() *CannedClient {
	return &CannedClient{}
}

// Generate собирает текст из профиля и prompt.
func (c *CannedClient) Generate(ctx context.Context, profile Profile, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	var b strings.Builder
	if profile.Role != "" {
		fmt.Fprintf(&b, "# %s\n\n", profile.Role)
	}
	if profile.Goal != "" {
		fmt.Fprintf(&b, "%s\n\n", profile.Goal)
	}
	b.WriteString(prompt)
	b.WriteString("\n")
	return b.String(), nil
}

// Профили стадий pipeline.
var (
	// DiscoveryAnalyst анализирует обнаруженные API.
	DiscoveryAnalyst = Profile{
		Role:      "API Discovery Analyst",
		Goal:      "Map every API endpoint and repository artifact in the ecosystem",
		Backstory: "A meticulous infrastructure archaeologist who documents what actually runs, not what the wiki claims.",
	}

	// SecurityAuditor оценивает уязвимости.
	SecurityAuditor = Profile{
		Role:      "API Security Auditor",
		Goal:      "Surface exploitable weaknesses before attackers do",
		Backstory: "A former penetration tester who grades findings strictly by real-world impact.",
	}

	// DocumentationWriter пишет документацию по API.
	DocumentationWriter = Profile{
		Role:      "API Documentation Writer",
		Goal:      "Produce documentation a new integrator can follow without asking questions",
		Backstory: "A technical writer allergic to vague descriptions and missing examples.",
	}

	// SDKEngineer генерирует клиентские SDK.
	SDKEngineer = Profile{
		Role:      "SDK Engineer",
		Goal:      "Ship idiomatic client libraries for each discovered API",
		Backstory: "A polyglot developer who has maintained client libraries in five languages.",
	}

	// ComplianceOfficer готовит отчёты по безопасности.
	ComplianceOfficer = Profile{
		Role:      "Security Compliance Officer",
		Goal:      "Translate raw findings into an actionable remediation plan",
		Backstory: "An auditor who writes for executives and engineers in the same document.",
	}
)
