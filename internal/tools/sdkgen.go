package tools

import (
	"fmt"
	"strings"

	"github.com/shaiso/apiforge/internal/domain"
)

// Языки, для которых генерируются клиенты.
var sdkLanguages = []string{"python", "javascript"}

// SDKGenerator генерирует клиентские библиотеки для найденных API.
type SDKGenerator struct{}

// NewSDKGenerator создаёт SDKGenerator.
func NewSDKGenerator() *SDKGenerator {
	return &SDKGenerator{}
}

// Languages возвращает поддерживаемые языки.
func (g *SDKGenerator) Languages() []string {
	out := make([]string, len(sdkLanguages))
	copy(out, sdkLanguages)
	return out
}

// Generate возвращает исходник клиента для API на заданном языке.
func (g *SDKGenerator) Generate(api domain.DiscoveredAPI, language string) (string, error) {
	base := api.BaseURL
	if base == "" {
		base = "http://localhost:8080"
	}
	name := clientName(api.Name)

	switch language {
	case "python":
		return pythonClient(name, base), nil
	case "javascript":
		return javascriptClient(name, base), nil
	default:
		return "", fmt.Errorf("unsupported sdk language: %s", language)
	}
}

// FileName возвращает имя файла клиента.
func (g *SDKGenerator) FileName(api domain.DiscoveredAPI, language string) string {
	slug := strings.ToLower(clientName(api.Name))
	switch language {
	case "python":
		return slug + "_client.py"
	case "javascript":
		return slug + "_client.js"
	default:
		return slug + "_client." + language
	}
}

// clientName превращает имя сервиса в идентификатор.
func clientName(service string) string {
	var b strings.Builder
	upper := true
	for _, r := range service {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upper {
				b.WriteString(strings.ToUpper(string(r)))
				upper = false
			} else {
				b.WriteRune(r)
			}
		default:
			upper = true
		}
	}
	if b.Len() == 0 {
		return "Api"
	}
	return b.String()
}

func pythonClient(name, baseURL string) string {
	return fmt.Sprintf(`"""Generated client for %[1]s."""

import requests


class %[1]sClient:
    def __init__(self, base_url="%[2]s", token=None):
        self.base_url = base_url.rstrip("/")
        self.session = requests.Session()
        if token:
            self.session.headers["Authorization"] = f"Bearer {token}"

    def get(self, path, **params):
        resp = self.session.get(self.base_url + path, params=params, timeout=30)
        resp.raise_for_status()
        return resp.json()

    def post(self, path, payload):
        resp = self.session.post(self.base_url + path, json=payload, timeout=30)
        resp.raise_for_status()
        return resp.json()
`, name, baseURL)
}

func javascriptClient(name, baseURL string) string {
	return fmt.Sprintf(`// Generated client for %[1]s.

class %[1]sClient {
  constructor(baseUrl = '%[2]s', token = null) {
    this.baseUrl = baseUrl.replace(/\/+$/, '');
    this.token = token;
  }

  async request(method, path, body) {
    const headers = { 'Content-Type': 'application/json' };
    if (this.token) headers.Authorization = 'Bearer ' + this.token;
    const resp = await fetch(this.baseUrl + path, {
      method,
      headers,
      body: body ? JSON.stringify(body) : undefined,
    });
    if (!resp.ok) throw new Error('HTTP ' + resp.status);
    return resp.json();
  }

  get(path) {
    return this.request('GET', path);
  }

  post(path, body) {
    return this.request('POST', path, body);
  }
}

module.exports = { %[1]sClient };
`, name, baseURL)
}
