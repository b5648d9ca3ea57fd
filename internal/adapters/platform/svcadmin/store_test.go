package svcadmin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/adimka/admin-console-beta/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestCreateFactoryConfig_AssignsInstancePid(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	pid, err := s.CreateFactoryConfig(ctx, "org.example.source", map[string]any{"url": "ldap://a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(pid, "org.example.source.") {
		t.Fatalf("got pid %q, want factory prefix", pid)
	}

	cfg, err := s.Config(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg["url"] != "ldap://a" {
		t.Fatalf("got %v", cfg)
	}
}

func TestConfig_UnconfiguredServiceYieldsEmptyMap(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	cfg, err := s.Config(context.Background(), "org.example.fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || len(cfg) != 0 {
		t.Fatalf("got %v, want empty map", cfg)
	}
}

func TestUpdateConfig_ReplacesProperties(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	pid, _ := s.CreateFactoryConfig(ctx, "org.example.source", map[string]any{"a": "1", "b": "2"})

	if err := s.UpdateConfig(ctx, pid, map[string]any{"a": "9"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, _ := s.Config(ctx, pid)
	if len(cfg) != 1 || cfg["a"] != "9" {
		t.Fatalf("got %v, want replaced config", cfg)
	}
}

func TestUpdateConfig_CreatesDocumentForNewService(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpdateConfig(ctx, "org.example.fresh", map[string]any{"a": "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := s.Config(ctx, "org.example.fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg["a"] != "1" {
		t.Fatalf("got %v, want created config", cfg)
	}
}

func TestDeleteConfig(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	pid, _ := s.CreateFactoryConfig(ctx, "org.example.source", map[string]any{"a": "1"})

	if err := s.DeleteConfig(ctx, pid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg, err := s.Config(ctx, pid); err != nil || len(cfg) != 0 {
		t.Fatalf("got (%v, %v), want empty map after delete", cfg, err)
	}

	if err := s.DeleteConfig(ctx, pid); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound on second delete", err)
	}
}

func TestFactoryConfigs_ListsOnlyDirectInstances(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	p1, _ := s.CreateFactoryConfig(ctx, "org.example.source", map[string]any{"n": "1"})
	p2, _ := s.CreateFactoryConfig(ctx, "org.example.source", map[string]any{"n": "2"})
	_, _ = s.CreateFactoryConfig(ctx, "org.example.sink", map[string]any{"n": "3"})

	configs, err := s.FactoryConfigs(ctx, "org.example.source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("got %d instances, want 2: %v", len(configs), configs)
	}
	if _, ok := configs[p1]; !ok {
		t.Fatalf("missing %q", p1)
	}
	if _, ok := configs[p2]; !ok {
		t.Fatalf("missing %q", p2)
	}
}

func TestFactoryConfigs_EmptyFactory(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	configs, err := s.FactoryConfigs(context.Background(), "org.example.none")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 0 {
		t.Fatalf("got %v, want empty", configs)
	}
}

func TestPidValidation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	bad := []string{"", "../etc/passwd", "org..example", "org/example", ".leading"}
	for _, pid := range bad {
		if _, err := s.Config(ctx, pid); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("pid %q: got %v, want ErrValidation", pid, err)
		}
	}
}
