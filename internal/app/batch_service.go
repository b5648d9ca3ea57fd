package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adimka/admin-console-beta/internal/configurator"
	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/platform/audit"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// Compile-time check that BatchService implements ports.BatchService.
var _ ports.BatchService = (*BatchService)(nil)

// ConfiguratorFactory builds a fresh Configurator. A Configurator is
// single-use, so BatchService needs a new one per batch (and per read-only
// query).
type ConfiguratorFactory func() *configurator.Configurator

// BatchService implements ports.BatchService. It validates incoming change
// requests, registers them with a fresh Configurator, commits the batch, and
// correlates ledger entries back to the requests. Successful batches are
// audited.
type BatchService struct {
	newConfigurator ConfiguratorFactory
	audit           *audit.Recorder
	logger          *slog.Logger
}

// NewBatchService creates a BatchService.
func NewBatchService(factory ConfiguratorFactory, recorder *audit.Recorder, logger *slog.Logger) *BatchService {
	return &BatchService{
		newConfigurator: factory,
		audit:           recorder,
		logger:          logger,
	}
}

// Apply registers the given changes in order and commits them as one batch.
// Operation failures are reported per change in the returned BatchReport.
// An error is returned only when the batch is empty, a change is invalid, or
// a change's initial state cannot be read; in those cases nothing was
// applied.
func (s *BatchService) Apply(ctx context.Context, changes []ports.ChangeRequest) (*ports.BatchReport, error) {
	if len(changes) == 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"changes": "must not be empty"}}
	}

	batchID := uuid.NewString()
	s.logger.InfoContext(ctx, "applying batch",
		slog.String("operation", "BatchService.Apply"),
		slog.String("batch_id", batchID),
		slog.Int("changes", len(changes)),
	)

	c := s.newConfigurator()

	keys := make([]string, len(changes))
	for i, ch := range changes {
		key, err := s.registerChange(ctx, c, ch)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to register change",
				slog.String("operation", "BatchService.Apply"),
				slog.String("batch_id", batchID),
				slog.Int("position", i),
				slog.String("kind", string(ch.Kind)),
				slog.Any("error", err),
			)
			return nil, fmt.Errorf("change %d (%s): %w", i, ch.Kind, err)
		}
		keys[i] = key
	}

	report, err := c.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("committing batch: %w", err)
	}

	out := &ports.BatchReport{
		Outcomes:  make([]ports.ChangeOutcome, len(changes)),
		Succeeded: report.TransactionSucceeded(),
	}
	for i, ch := range changes {
		result, _ := report.Result(keys[i])
		out.Outcomes[i] = ports.ChangeOutcome{
			Request: ch,
			Key:     keys[i],
			Result:  result,
		}
	}

	if out.Succeeded {
		s.audit.Record(ctx, "batch_committed",
			slog.String("batch_id", batchID),
			slog.Int("operations", len(changes)),
		)
	} else {
		s.logger.WarnContext(ctx, "batch failed and was rolled back",
			slog.String("operation", "BatchService.Apply"),
			slog.String("batch_id", batchID),
		)
	}

	return out, nil
}

// registerChange validates one change request and registers it with the
// configurator, returning the ledger key.
func (s *BatchService) registerChange(ctx context.Context, c *configurator.Configurator, ch ports.ChangeRequest) (string, error) {
	switch ch.Kind {
	case ports.ChangeStartComponent:
		if err := requireField("name", ch.Name); err != nil {
			return "", err
		}
		return c.StartComponent(ctx, ch.Name)

	case ports.ChangeStopComponent:
		if err := requireField("name", ch.Name); err != nil {
			return "", err
		}
		return c.StopComponent(ctx, ch.Name)

	case ports.ChangeInstallFeature:
		if err := requireField("name", ch.Name); err != nil {
			return "", err
		}
		return c.InstallFeature(ctx, ch.Name)

	case ports.ChangeUninstallFeature:
		if err := requireField("name", ch.Name); err != nil {
			return "", err
		}
		return c.UninstallFeature(ctx, ch.Name)

	case ports.ChangeCreateSettings:
		if err := requireField("path", ch.Path); err != nil {
			return "", err
		}
		return c.CreateSettingsFile(ctx, ch.Path, ch.Settings)

	case ports.ChangeUpdateSettings:
		if err := requireField("path", ch.Path); err != nil {
			return "", err
		}
		return c.UpdateSettingsFile(ctx, ch.Path, ch.Settings, ch.KeepExisting)

	case ports.ChangeDeleteSettings:
		if err := requireField("path", ch.Path); err != nil {
			return "", err
		}
		return c.DeleteSettingsFile(ctx, ch.Path)

	case ports.ChangeUpdateServiceConfig:
		if err := requireField("pid", ch.Pid); err != nil {
			return "", err
		}
		return c.UpdateServiceConfig(ctx, ch.Pid, ch.Config, ch.KeepExisting)

	case ports.ChangeCreateManagedService:
		if err := requireField("factory_pid", ch.FactoryPid); err != nil {
			return "", err
		}
		return c.CreateManagedService(ch.FactoryPid, ch.Config), nil

	case ports.ChangeDeleteManagedService:
		if err := requireField("pid", ch.Pid); err != nil {
			return "", err
		}
		return c.DeleteManagedService(ctx, ch.Pid)

	default:
		return "", &domain.ValidationError{Fields: map[string]string{
			"kind": fmt.Sprintf("unknown change kind %q", ch.Kind),
		}}
	}
}

func requireField(field, value string) error {
	if value == "" {
		return &domain.ValidationError{Fields: map[string]string{field: "is required"}}
	}
	return nil
}

// ComponentRunning reports whether the named component is running.
func (s *BatchService) ComponentRunning(ctx context.Context, name string) (bool, error) {
	return s.newConfigurator().IsComponentRunning(ctx, name)
}

// FeatureInstalled reports whether the named feature is installed.
func (s *BatchService) FeatureInstalled(ctx context.Context, name string) (bool, error) {
	return s.newConfigurator().IsFeatureInstalled(ctx, name)
}

// Settings returns the contents of the settings file at path.
func (s *BatchService) Settings(ctx context.Context, path string) (map[string]string, error) {
	return s.newConfigurator().Settings(ctx, path)
}

// ServiceConfig returns the configuration of the service identified by pid.
func (s *BatchService) ServiceConfig(ctx context.Context, pid string) (map[string]any, error) {
	return s.newConfigurator().ServiceConfig(ctx, pid)
}

// ManagedServiceConfigs returns the configurations of all managed-service
// instances under the given factory pid.
func (s *BatchService) ManagedServiceConfigs(ctx context.Context, factoryPid string) (map[string]map[string]any, error) {
	return s.newConfigurator().ManagedServiceConfigs(ctx, factoryPid)
}
