package platformctl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/platform/config"
	"github.com/adimka/admin-console-beta/internal/platform/httpclient"
)

// newTestController creates a Controller pointing at the given test server
// with circuit breaker and retry configured for fast test execution.
func newTestController(t *testing.T, baseURL string) *Controller {
	t.Helper()

	cfg := &config.ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      1,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       30 * time.Second,
			HalfOpenLimit: 1,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(httpclient.New(cfg, "platformctl-test", nil, logger), logger)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
}

func TestIsRunning(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/components/indexer" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(t, w, map[string]any{"name": "indexer", "state": "running"})
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	running, err := ctrl.IsRunning(context.Background(), "indexer")
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if !running {
		t.Fatal("expected running")
	}
}

func TestIsRunning_Stopped(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(t, w, map[string]any{"name": "indexer", "state": "stopped"})
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	running, err := ctrl.IsRunning(context.Background(), "indexer")
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if running {
		t.Fatal("expected stopped")
	}
}

func TestStart_SendsPost(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	if err := ctrl.Start(context.Background(), "indexer"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/components/indexer/start" {
		t.Fatalf("got %s %s", gotMethod, gotPath)
	}
}

func TestStop_NotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"no such component"}`))
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	err := ctrl.Stop(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestInstall_ServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	err := ctrl.Install(context.Background(), "search")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

func TestIsInstalled(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/features/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		writeJSON(t, w, map[string]any{"name": "search", "installed": true})
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	installed, err := ctrl.IsInstalled(context.Background(), "search")
	if err != nil {
		t.Fatalf("IsInstalled() error = %v", err)
	}
	if !installed {
		t.Fatal("expected installed")
	}
}

func TestUninstall_EscapesName(t *testing.T) {
	t.Parallel()

	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ctrl := newTestController(t, ts.URL)
	if err := ctrl.Uninstall(context.Background(), "search/v2"); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if gotPath != "/features/search%2Fv2/uninstall" {
		t.Fatalf("got path %q", gotPath)
	}
}

func TestHealthCheck_ClosedBreaker(t *testing.T) {
	t.Parallel()

	ctrl := newTestController(t, "http://localhost:0")
	if err := ctrl.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if ctrl.Name() != "platformctl-test" {
		t.Fatalf("got name %q", ctrl.Name())
	}
}
