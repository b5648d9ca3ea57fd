package ports

import "context"

// ComponentRuntime defines the platform port for querying and toggling the
// running state of a deployed component. Implemented by the platform
// controller adapter; called by configurator operations and state queries.
//
// All methods return domain.ErrNotFound (wrapped) when the named component
// is unknown to the runtime.
type ComponentRuntime interface {
	// IsRunning reports whether the component is currently running.
	IsRunning(ctx context.Context, name string) (bool, error)

	// Start transitions the component to the running state. Starting a
	// component that is already running is an error; callers are expected
	// to check IsRunning first.
	Start(ctx context.Context, name string) error

	// Stop transitions the component to the stopped state.
	Stop(ctx context.Context, name string) error
}

// FeatureManager defines the platform port for installing and removing
// optional features. Implemented by the platform controller adapter.
type FeatureManager interface {
	// IsInstalled reports whether the named feature is installed and active.
	IsInstalled(ctx context.Context, name string) (bool, error)

	// Install installs and activates the feature.
	Install(ctx context.Context, name string) error

	// Uninstall deactivates and removes the feature.
	Uninstall(ctx context.Context, name string) error
}

// SettingsStore defines the platform port for keyed settings files. Paths
// are relative to the store's root; implementations must reject paths that
// escape it.
type SettingsStore interface {
	// Read returns the key:value pairs currently persisted at path.
	// Returns domain.ErrNotFound (wrapped) when no file exists at path.
	Read(ctx context.Context, path string) (map[string]string, error)

	// Write persists the given key:value pairs at path, replacing any
	// existing content.
	Write(ctx context.Context, path string, settings map[string]string) error

	// Delete removes the settings file at path.
	// Returns domain.ErrNotFound (wrapped) when no file exists at path.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a settings file is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// ServiceAdmin defines the platform port for service configuration records:
// singleton configurations addressed by pid and factory-instantiated
// configurations addressed by a factory pid. Implemented by the svcadmin
// adapter.
type ServiceAdmin interface {
	// Config returns the configuration persisted for pid. Returns an empty
	// map (not an error) when the pid has no stored configuration yet.
	Config(ctx context.Context, pid string) (map[string]any, error)

	// UpdateConfig replaces the configuration stored for pid, creating the
	// document when the pid has none yet.
	UpdateConfig(ctx context.Context, pid string, cfg map[string]any) error

	// CreateFactoryConfig instantiates a new configuration under factoryPid
	// and returns the pid assigned to the new instance.
	CreateFactoryConfig(ctx context.Context, factoryPid string, cfg map[string]any) (string, error)

	// DeleteConfig removes the configuration stored for pid.
	// Returns domain.ErrNotFound (wrapped) when pid is unknown.
	DeleteConfig(ctx context.Context, pid string) error

	// FactoryConfigs returns the configurations of every instance created
	// under factoryPid, keyed by instance pid.
	FactoryConfigs(ctx context.Context, factoryPid string) (map[string]map[string]any, error)
}
