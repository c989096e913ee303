package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaiso/apiforge/internal/agent"
	"github.com/shaiso/apiforge/internal/domain"
)

// DocGenerator собирает документацию по найденным API.
type DocGenerator struct {
	client agent.Client
}

// NewDocGenerator создаёт генератор документации.
func NewDocGenerator(client agent.Client) *DocGenerator {
	return &DocGenerator{client: client}
}

// Generate строит markdown-документ для одного API.
func (g *DocGenerator) Generate(ctx context.Context, api domain.DiscoveredAPI) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "## Service %s\n\n", api.Name)
	if api.BaseURL != "" {
		fmt.Fprintf(&b, "Base URL: `%s`\n\n", api.BaseURL)
	}
	if api.SpecFile != "" {
		fmt.Fprintf(&b, "Specification: `%s`\n\n", api.SpecFile)
	}

	if len(api.Endpoints) > 0 {
		b.WriteString("### Endpoints\n\n")
		b.WriteString("| Path | Status | Content-Type |\n")
		b.WriteString("|------|--------|--------------|\n")
		for _, ep := range api.Endpoints {
			fmt.Fprintf(&b, "| `%s` | %d | %s |\n", ep.Path, ep.StatusCode, ep.ContentType)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Usage\n\n")
	b.WriteString("Authenticate with a bearer token and send JSON request bodies.\n")

	return g.client.Generate(ctx, agent.DocumentationWriter, b.String())
}

// Overview строит вводный раздел для набора API.
func (g *DocGenerator) Overview(ctx context.Context, apis []domain.DiscoveredAPI) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "API ecosystem documentation covering %d service(s).\n\n", len(apis))
	for _, api := range apis {
		fmt.Fprintf(&b, "- %s (%s)\n", api.Name, api.Source)
	}

	return g.client.Generate(ctx, agent.DocumentationWriter, b.String())
}
