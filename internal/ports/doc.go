// Package ports defines interfaces between layers in the hexagonal architecture.
// Service ports are implemented by the application layer and called by handlers.
// Platform ports (ComponentRuntime, FeatureManager, SettingsStore, ServiceAdmin)
// are implemented by outbound adapters and called by the configurator.
package ports
