// Package svcadmin implements the service configuration registry on the
// local filesystem. Each service's configuration lives in one JSON document
// named after its pid; managed-service instances are created under a factory
// pid with a generated instance suffix.
package svcadmin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/adimka/admin-console-beta/internal/domain"
)

// pidPattern accepts reverse-domain pids like "org.example.indexer".
var pidPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*(\.[a-zA-Z0-9][a-zA-Z0-9_-]*)*$`)

// Store keeps one JSON configuration document per pid under a root
// directory.
type Store struct {
	root   string
	logger *slog.Logger
}

// New creates a Store rooted at dir. The directory is created if absent.
func New(dir string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving service config root %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating service config root %q: %w", abs, err)
	}

	return &Store{root: abs, logger: logger}, nil
}

// Config returns the configuration of the service identified by pid.
// A pid with no stored configuration yet yields an empty map, not an error;
// configuration documents come into being on first write.
func (s *Store) Config(_ context.Context, pid string) (map[string]any, error) {
	path, err := s.pidPath(pid)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("reading config of service %q: %w", pid, err)
	}

	var cfg map[string]any
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config of service %q: %w", pid, err)
	}
	return cfg, nil
}

// UpdateConfig replaces the configuration stored for pid, creating the
// document when the service has none yet.
func (s *Store) UpdateConfig(ctx context.Context, pid string, cfg map[string]any) error {
	path, err := s.pidPath(pid)
	if err != nil {
		return err
	}

	return s.write(ctx, pid, path, cfg)
}

// CreateFactoryConfig creates a new managed-service instance under
// factoryPid and returns the instance pid.
func (s *Store) CreateFactoryConfig(ctx context.Context, factoryPid string, cfg map[string]any) (string, error) {
	if !pidPattern.MatchString(factoryPid) {
		return "", fmt.Errorf("invalid factory pid %q: %w", factoryPid, domain.ErrValidation)
	}

	pid := factoryPid + "." + uuid.NewString()
	path, err := s.pidPath(pid)
	if err != nil {
		return "", err
	}

	if err := s.write(ctx, pid, path, cfg); err != nil {
		return "", err
	}
	return pid, nil
}

// DeleteConfig removes the configuration of the service identified by pid.
// Returns domain.ErrNotFound if no configuration exists.
func (s *Store) DeleteConfig(ctx context.Context, pid string) error {
	path, err := s.pidPath(pid)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("service %q: %w", pid, domain.ErrNotFound)
		}
		return fmt.Errorf("deleting config of service %q: %w", pid, err)
	}

	s.logger.DebugContext(ctx, "service config deleted",
		slog.String("operation", "svcadmin.DeleteConfig"),
		slog.String("pid", pid),
	)
	return nil
}

// FactoryConfigs returns the configurations of all managed-service instances
// under the given factory pid, keyed by instance pid.
func (s *Store) FactoryConfigs(ctx context.Context, factoryPid string) (map[string]map[string]any, error) {
	if !pidPattern.MatchString(factoryPid) {
		return nil, fmt.Errorf("invalid factory pid %q: %w", factoryPid, domain.ErrValidation)
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing service configs: %w", err)
	}

	prefix := factoryPid + "."
	configs := make(map[string]map[string]any)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		pid := strings.TrimSuffix(name, ".json")
		// Instances are exactly one suffix segment below the factory pid.
		rest, ok := strings.CutPrefix(pid, prefix)
		if !ok || strings.Contains(rest, ".") {
			continue
		}

		cfg, err := s.Config(ctx, pid)
		if err != nil {
			return nil, err
		}
		configs[pid] = cfg
	}

	return configs, nil
}

func (s *Store) write(ctx context.Context, pid, path string, cfg map[string]any) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config of service %q: %w", pid, err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("writing config of service %q: %w", pid, err)
	}

	s.logger.DebugContext(ctx, "service config written",
		slog.String("operation", "svcadmin.write"),
		slog.String("pid", pid),
		slog.Int("properties", len(cfg)),
	)
	return nil
}

func (s *Store) pidPath(pid string) (string, error) {
	if !pidPattern.MatchString(pid) {
		return "", fmt.Errorf("invalid pid %q: %w", pid, domain.ErrValidation)
	}
	return filepath.Join(s.root, pid+".json"), nil
}
