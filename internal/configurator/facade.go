package configurator

import "context"

// Registration methods. Each reads the target resource's current state,
// constructs the operation around that snapshot, appends it to the batch, and
// returns the operation's ledger key. A state-read failure is returned
// immediately and nothing is registered.

// StartComponent registers starting the named component.
func (c *Configurator) StartComponent(ctx context.Context, name string) (string, error) {
	op, err := newComponentOperation(ctx, c.components, name, true)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// StopComponent registers stopping the named component.
func (c *Configurator) StopComponent(ctx context.Context, name string) (string, error) {
	op, err := newComponentOperation(ctx, c.components, name, false)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// InstallFeature registers installing the named feature.
func (c *Configurator) InstallFeature(ctx context.Context, name string) (string, error) {
	op, err := newFeatureOperation(ctx, c.features, name, true)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// UninstallFeature registers uninstalling the named feature.
func (c *Configurator) UninstallFeature(ctx context.Context, name string) (string, error) {
	op, err := newFeatureOperation(ctx, c.features, name, false)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// CreateSettingsFile registers creating a settings file at path with the
// given contents. The file must not already exist.
func (c *Configurator) CreateSettingsFile(ctx context.Context, path string, settings map[string]string) (string, error) {
	op, err := newSettingsCreateOperation(ctx, c.settings, path, settings)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// UpdateSettingsFile registers updating the settings file at path. When
// keepExisting is true the given entries are merged over the current ones;
// otherwise they replace the file's contents.
func (c *Configurator) UpdateSettingsFile(ctx context.Context, path string, settings map[string]string, keepExisting bool) (string, error) {
	op, err := newSettingsUpdateOperation(ctx, c.settings, path, settings, keepExisting)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// DeleteSettingsFile registers deleting the settings file at path.
func (c *Configurator) DeleteSettingsFile(ctx context.Context, path string) (string, error) {
	op, err := newSettingsDeleteOperation(ctx, c.settings, path)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// UpdateServiceConfig registers updating the configuration of the service
// identified by pid. When keepExisting is true the given properties are
// merged over the current ones; otherwise they replace them.
func (c *Configurator) UpdateServiceConfig(ctx context.Context, pid string, cfg map[string]any, keepExisting bool) (string, error) {
	op, err := newServiceConfigOperation(ctx, c.services, pid, cfg, keepExisting)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// CreateManagedService registers creating a new managed-service instance
// under the given factory pid. The new instance's pid appears as the
// resource id in the operation's ledger entry.
func (c *Configurator) CreateManagedService(factoryPid string, cfg map[string]any) string {
	return c.register(newManagedServiceCreateOperation(c.services, factoryPid, cfg))
}

// DeleteManagedService registers deleting the managed-service instance
// identified by pid.
func (c *Configurator) DeleteManagedService(ctx context.Context, pid string) (string, error) {
	op, err := newManagedServiceDeleteOperation(ctx, c.services, pid)
	if err != nil {
		return "", err
	}
	return c.register(op), nil
}

// Read-only queries. These bypass the batch entirely and report the live
// state of the platform; they are not isolated from batches committing
// concurrently against the same resources.

// IsComponentRunning reports whether the named component is running.
func (c *Configurator) IsComponentRunning(ctx context.Context, name string) (bool, error) {
	return c.components.IsRunning(ctx, name)
}

// IsFeatureInstalled reports whether the named feature is installed.
func (c *Configurator) IsFeatureInstalled(ctx context.Context, name string) (bool, error) {
	return c.features.IsInstalled(ctx, name)
}

// Settings returns the contents of the settings file at path.
func (c *Configurator) Settings(ctx context.Context, path string) (map[string]string, error) {
	return c.settings.Read(ctx, path)
}

// ServiceConfig returns the configuration of the service identified by pid.
func (c *Configurator) ServiceConfig(ctx context.Context, pid string) (map[string]any, error) {
	return c.services.Config(ctx, pid)
}

// ManagedServiceConfigs returns the configurations of all managed-service
// instances created under the given factory pid, keyed by instance pid.
func (c *Configurator) ManagedServiceConfigs(ctx context.Context, factoryPid string) (map[string]map[string]any, error) {
	return c.services.FactoryConfigs(ctx, factoryPid)
}
