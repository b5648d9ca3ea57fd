package ports

import (
	"context"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/domain/directory"
)

// ChangeKind identifies one of the supported batch change types.
type ChangeKind string

const (
	ChangeStartComponent       ChangeKind = "start_component"
	ChangeStopComponent        ChangeKind = "stop_component"
	ChangeInstallFeature       ChangeKind = "install_feature"
	ChangeUninstallFeature     ChangeKind = "uninstall_feature"
	ChangeCreateSettings       ChangeKind = "create_settings"
	ChangeUpdateSettings       ChangeKind = "update_settings"
	ChangeDeleteSettings       ChangeKind = "delete_settings"
	ChangeUpdateServiceConfig  ChangeKind = "update_service_config"
	ChangeCreateManagedService ChangeKind = "create_managed_service"
	ChangeDeleteManagedService ChangeKind = "delete_managed_service"
)

// ChangeRequest describes one requested change within a batch. Which fields
// are meaningful depends on Kind: Name for component and feature changes,
// Path and Settings for settings-file changes, Pid/FactoryPid and Config for
// service changes. KeepExisting selects merge semantics for the update kinds.
type ChangeRequest struct {
	Kind         ChangeKind
	Name         string
	Path         string
	Pid          string
	FactoryPid   string
	Settings     map[string]string
	Config       map[string]any
	KeepExisting bool
}

// ChangeOutcome pairs a requested change with its recorded result.
type ChangeOutcome struct {
	Request ChangeRequest
	Key     string
	Result  domain.Result
}

// BatchReport is the outcome of applying one batch, with outcomes in the
// order the changes were requested.
type BatchReport struct {
	Outcomes  []ChangeOutcome
	Succeeded bool
}

// BatchService defines the service port for transactional configuration
// batches and the read-only state queries alongside them.
// Implemented by the application layer; called by inbound adapters (handlers).
type BatchService interface {
	// Apply registers the given changes in order and commits them as one
	// compensating batch. Operation failures are reported per change in the
	// returned BatchReport, never as an error. An error is returned only
	// when a change is invalid or its initial state cannot be read, in
	// which case nothing was applied.
	Apply(ctx context.Context, changes []ChangeRequest) (*BatchReport, error)

	// ComponentRunning reports whether the named component is running.
	ComponentRunning(ctx context.Context, name string) (bool, error)

	// FeatureInstalled reports whether the named feature is installed.
	FeatureInstalled(ctx context.Context, name string) (bool, error)

	// Settings returns the contents of the settings file at path.
	// Returns domain.ErrNotFound if the file does not exist.
	Settings(ctx context.Context, path string) (map[string]string, error)

	// ServiceConfig returns the configuration of the service identified by
	// pid. A pid with no stored configuration yields an empty map.
	ServiceConfig(ctx context.Context, pid string) (map[string]any, error)

	// ManagedServiceConfigs returns the configurations of all managed-service
	// instances under the given factory pid, keyed by instance pid.
	ManagedServiceConfigs(ctx context.Context, factoryPid string) (map[string]map[string]any, error)
}

// DirectoryService defines the service port for directory connection tests.
// Probes are plain reads against the directory; they do not register
// anything with a batch.
type DirectoryService interface {
	// TestConnect checks that the directory host accepts connections with
	// the configured encryption method. Bind credentials are not used.
	TestConnect(ctx context.Context, cfg directory.Config) (directory.ProbeResult, error)

	// TestBind connects and authenticates with the configured bind method
	// and credentials.
	TestBind(ctx context.Context, cfg directory.Config) (directory.ProbeResult, error)
}
