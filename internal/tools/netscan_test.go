package tools

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func TestNetScanner_ScanHost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("index"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	scanner := NewNetScanner().WithPorts([]int{port})
	apis, err := scanner.ScanHost(context.Background(), host)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(apis) != 1 {
		t.Fatalf("expected 1 api, got %d", len(apis))
	}
	api := apis[0]
	if api.Source != "network" {
		t.Errorf("expected network source, got %s", api.Source)
	}
	if api.Port != port {
		t.Errorf("expected port %d, got %d", port, api.Port)
	}

	var foundJSON bool
	for _, ep := range api.Endpoints {
		if ep.Path == "/api" && ep.JSON {
			foundJSON = true
		}
	}
	if !foundJSON {
		t.Errorf("expected /api marked as JSON, endpoints: %+v", api.Endpoints)
	}
}

func TestNetScanner_ClosedPort(t *testing.T) {
	// Резервируем порт и сразу закрываем, чтобы он точно был свободен.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	scanner := NewNetScanner().WithPorts([]int{port})
	apis, err := scanner.ScanHost(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(apis) != 0 {
		t.Errorf("expected no apis on closed port, got %d", len(apis))
	}
}
