package tools

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shaiso/apiforge/internal/domain"
)

// Порты, на которых обычно живут API сервисы.
var defaultPorts = []int{80, 443, 3000, 5000, 5001, 8000, 8080, 9000}

// Пути, по которым опознаётся API.
var probePaths = []string{"/", "/api", "/v1", "/swagger", "/docs", "/openapi.json", "/health"}

const (
	dialTimeout  = 500 * time.Millisecond
	probeTimeout = 2 * time.Second
)

// NetScanner ищет API сервисы на хосте перебором известных портов.
//
// Порт считается живым, если TCP-соединение устанавливается; затем
// каждый живой порт пробуется по HTTP на известных путях.
type NetScanner struct {
	ports  []int
	client *http.Client
}

// NewNetScanner создаёт сканер со стандартным набором портов.
func NewNetScanner() *NetScanner {
	return &NetScanner{
		ports: defaultPorts,
		client: &http.Client{
			Timeout: probeTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// WithPorts заменяет набор сканируемых портов.
func (s *NetScanner) WithPorts(ports []int) *NetScanner {
	s.ports = ports
	return s
}

// LocalIP возвращает адрес исходящего интерфейса хоста.
//
// UDP-dial не отправляет пакетов — соединение нужно только для того,
// чтобы ядро выбрало маршрут.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1"
	}
	return addr.IP.String()
}

// ScanHost сканирует один хост и возвращает найденные API.
func (s *NetScanner) ScanHost(ctx context.Context, host string) ([]domain.DiscoveredAPI, error) {
	var apis []domain.DiscoveredAPI

	for _, port := range s.ports {
		if err := ctx.Err(); err != nil {
			return apis, err
		}

		addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
		conn, err := net.DialTimeout("tcp", addr, dialTimeout)
		if err != nil {
			continue
		}
		conn.Close()

		endpoints := s.probePort(ctx, host, port)
		if len(endpoints) == 0 {
			continue
		}

		apis = append(apis, domain.DiscoveredAPI{
			Name:      fmt.Sprintf("%s:%d", host, port),
			Source:    "network",
			BaseURL:   baseURL(host, port),
			Port:      port,
			Endpoints: endpoints,
		})
	}

	return apis, nil
}

// probePort пробует известные пути на живом порту.
func (s *NetScanner) probePort(ctx context.Context, host string, port int) []domain.ProbedEndpoint {
	var endpoints []domain.ProbedEndpoint

	for _, path := range probePaths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(host, port)+path, nil)
		if err != nil {
			continue
		}

		resp, err := s.client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 500 {
			continue
		}

		contentType := resp.Header.Get("Content-Type")
		endpoints = append(endpoints, domain.ProbedEndpoint{
			Path:        path,
			StatusCode:  resp.StatusCode,
			ContentType: contentType,
			JSON:        strings.Contains(contentType, "application/json"),
		})
	}

	return endpoints
}

func baseURL(host string, port int) string {
	if port == 443 {
		return "https://" + host
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
