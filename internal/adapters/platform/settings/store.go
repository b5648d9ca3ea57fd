// Package settings implements the settings-file store on the local
// filesystem. Files are YAML documents of flat string key/value pairs,
// confined to a configured root directory.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"

	"github.com/adimka/admin-console-beta/internal/domain"
)

// Store reads and writes settings files under a root directory. Paths given
// to its methods are relative to that root; paths escaping it are rejected.
type Store struct {
	root   string
	parser *yaml.YAML
	logger *slog.Logger
}

// New creates a Store rooted at dir. The directory is created if absent.
func New(dir string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving settings root %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating settings root %q: %w", abs, err)
	}

	return &Store{
		root:   abs,
		parser: yaml.Parser(),
		logger: logger,
	}, nil
}

// Read returns the contents of the settings file at path.
// Returns domain.ErrNotFound if the file does not exist.
func (s *Store) Read(_ context.Context, path string) (map[string]string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("settings file %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading settings file %q: %w", path, err)
	}

	parsed, err := s.parser.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing settings file %q: %w", path, err)
	}

	settings := make(map[string]string, len(parsed))
	for k, v := range parsed {
		settings[k] = fmt.Sprint(v)
	}
	return settings, nil
}

// Write replaces the settings file at path with the given entries, creating
// parent directories as needed.
func (s *Store) Write(ctx context.Context, path string, settings map[string]string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	doc := make(map[string]any, len(settings))
	for k, v := range settings {
		doc[k] = v
	}

	raw, err := s.parser.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding settings file %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("creating directory for %q: %w", path, err)
	}
	if err := os.WriteFile(full, raw, 0o600); err != nil {
		return fmt.Errorf("writing settings file %q: %w", path, err)
	}

	s.logger.DebugContext(ctx, "settings file written",
		slog.String("operation", "settings.Write"),
		slog.String("path", path),
		slog.Int("entries", len(settings)),
	)
	return nil
}

// Delete removes the settings file at path.
// Returns domain.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("settings file %q: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("deleting settings file %q: %w", path, err)
	}

	s.logger.DebugContext(ctx, "settings file deleted",
		slog.String("operation", "settings.Delete"),
		slog.String("path", path),
	)
	return nil
}

// Exists reports whether a settings file exists at path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking settings file %q: %w", path, err)
	}
	return true, nil
}

// resolve joins path onto the root and rejects anything escaping it.
func (s *Store) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("settings path must not be empty: %w", domain.ErrValidation)
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("settings path %q escapes the settings root: %w", path, domain.ErrValidation)
	}
	return full, nil
}
