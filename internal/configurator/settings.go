package configurator

import (
	"context"
	"fmt"
	"maps"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// settingsCreateOperation writes a new settings file. Creation of an already
// existing file is rejected at registration time; rollback deletes the file.
type settingsCreateOperation struct {
	store    ports.SettingsStore
	path     string
	settings map[string]string
}

func newSettingsCreateOperation(ctx context.Context, store ports.SettingsStore, path string, settings map[string]string) (*settingsCreateOperation, error) {
	exists, err := store.Exists(ctx, path)
	if err != nil {
		return nil, domain.OperationFailed(err, "checking settings file %q", path)
	}
	if exists {
		return nil, fmt.Errorf("settings file %q already exists: %w", path, domain.ErrConflict)
	}

	return &settingsCreateOperation{
		store:    store,
		path:     path,
		settings: maps.Clone(settings),
	}, nil
}

func (o *settingsCreateOperation) Commit(ctx context.Context) (string, error) {
	if err := o.store.Write(ctx, o.path, o.settings); err != nil {
		return "", domain.OperationFailed(err, "creating settings file %q", o.path)
	}
	return "", nil
}

func (o *settingsCreateOperation) Rollback(ctx context.Context) error {
	if err := o.store.Delete(ctx, o.path); err != nil {
		return domain.OperationFailed(err, "deleting settings file %q", o.path)
	}
	return nil
}

// settingsUpdateOperation rewrites an existing settings file. The file's
// contents observed at construction are the rollback target. With
// keepExisting the new entries are merged over the current ones; otherwise
// they replace the file wholesale.
type settingsUpdateOperation struct {
	store   ports.SettingsStore
	path    string
	desired map[string]string
	initial map[string]string
}

func newSettingsUpdateOperation(ctx context.Context, store ports.SettingsStore, path string, settings map[string]string, keepExisting bool) (*settingsUpdateOperation, error) {
	current, err := store.Read(ctx, path)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading settings file %q", path)
	}

	desired := maps.Clone(settings)
	if keepExisting {
		desired = maps.Clone(current)
		maps.Copy(desired, settings)
	}

	return &settingsUpdateOperation{
		store:   store,
		path:    path,
		desired: desired,
		initial: current,
	}, nil
}

func (o *settingsUpdateOperation) Commit(ctx context.Context) (string, error) {
	if maps.Equal(o.desired, o.initial) {
		return "", nil
	}
	if err := o.store.Write(ctx, o.path, o.desired); err != nil {
		return "", domain.OperationFailed(err, "updating settings file %q", o.path)
	}
	return "", nil
}

func (o *settingsUpdateOperation) Rollback(ctx context.Context) error {
	if maps.Equal(o.desired, o.initial) {
		return nil
	}
	if err := o.store.Write(ctx, o.path, o.initial); err != nil {
		return domain.OperationFailed(err, "restoring settings file %q", o.path)
	}
	return nil
}

// settingsDeleteOperation removes a settings file, keeping a snapshot of its
// contents so rollback can recreate it.
type settingsDeleteOperation struct {
	store    ports.SettingsStore
	path     string
	snapshot map[string]string
}

func newSettingsDeleteOperation(ctx context.Context, store ports.SettingsStore, path string) (*settingsDeleteOperation, error) {
	current, err := store.Read(ctx, path)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading settings file %q", path)
	}

	return &settingsDeleteOperation{
		store:    store,
		path:     path,
		snapshot: current,
	}, nil
}

func (o *settingsDeleteOperation) Commit(ctx context.Context) (string, error) {
	if err := o.store.Delete(ctx, o.path); err != nil {
		return "", domain.OperationFailed(err, "deleting settings file %q", o.path)
	}
	return "", nil
}

func (o *settingsDeleteOperation) Rollback(ctx context.Context) error {
	if err := o.store.Write(ctx, o.path, o.snapshot); err != nil {
		return domain.OperationFailed(err, "recreating settings file %q", o.path)
	}
	return nil
}
