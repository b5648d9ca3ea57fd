package app

import (
	"context"
	"log/slog"

	"github.com/adimka/admin-console-beta/internal/domain/directory"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// Compile-time check that DirectoryService implements ports.DirectoryService.
var _ ports.DirectoryService = (*DirectoryService)(nil)

// DirectoryService implements ports.DirectoryService by delegating to the
// directory prober and logging each probe with its outcome. Probes are plain
// reads; nothing is registered with a batch.
type DirectoryService struct {
	prober ports.DirectoryService
	logger *slog.Logger
}

// NewDirectoryService creates a DirectoryService around the given prober.
func NewDirectoryService(prober ports.DirectoryService, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{prober: prober, logger: logger}
}

// TestConnect checks that the directory host accepts connections.
func (s *DirectoryService) TestConnect(ctx context.Context, cfg directory.Config) (directory.ProbeResult, error) {
	return s.probe(ctx, "TestConnect", cfg, s.prober.TestConnect)
}

// TestBind connects and authenticates with the configured bind credentials.
func (s *DirectoryService) TestBind(ctx context.Context, cfg directory.Config) (directory.ProbeResult, error) {
	return s.probe(ctx, "TestBind", cfg, s.prober.TestBind)
}

func (s *DirectoryService) probe(
	ctx context.Context,
	name string,
	cfg directory.Config,
	fn func(context.Context, directory.Config) (directory.ProbeResult, error),
) (directory.ProbeResult, error) {
	result, err := fn(ctx, cfg)
	if err != nil {
		s.logger.ErrorContext(ctx, "directory probe error",
			slog.String("operation", "DirectoryService."+name),
			slog.Any("config", cfg),
			slog.Any("error", err),
		)
		return "", err
	}

	s.logger.InfoContext(ctx, "directory probe finished",
		slog.String("operation", "DirectoryService."+name),
		slog.Any("config", cfg),
		slog.String("result", result.String()),
	)
	return result, nil
}
