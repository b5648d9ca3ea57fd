package configurator

import (
	"context"
	"maps"
	"reflect"
	"strings"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// serviceConfigOperation rewrites the configuration of a service, creating
// the configuration document when the pid has none yet. The properties
// observed at construction (an empty map for an unconfigured pid) are the
// rollback target.
type serviceConfigOperation struct {
	admin   ports.ServiceAdmin
	pid     string
	desired map[string]any
	initial map[string]any
}

func newServiceConfigOperation(ctx context.Context, admin ports.ServiceAdmin, pid string, cfg map[string]any, keepExisting bool) (*serviceConfigOperation, error) {
	current, err := admin.Config(ctx, pid)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading config of service %q", pid)
	}

	desired := maps.Clone(cfg)
	if keepExisting {
		desired = maps.Clone(current)
		maps.Copy(desired, cfg)
	}

	return &serviceConfigOperation{
		admin:   admin,
		pid:     pid,
		desired: desired,
		initial: current,
	}, nil
}

func (o *serviceConfigOperation) Commit(ctx context.Context) (string, error) {
	if reflect.DeepEqual(o.desired, o.initial) {
		return "", nil
	}
	if err := o.admin.UpdateConfig(ctx, o.pid, o.desired); err != nil {
		return "", domain.OperationFailed(err, "updating config of service %q", o.pid)
	}
	return "", nil
}

func (o *serviceConfigOperation) Rollback(ctx context.Context) error {
	if reflect.DeepEqual(o.desired, o.initial) {
		return nil
	}
	if err := o.admin.UpdateConfig(ctx, o.pid, o.initial); err != nil {
		return domain.OperationFailed(err, "restoring config of service %q", o.pid)
	}
	return nil
}

// managedServiceCreateOperation creates a new service instance under a
// factory pid. The instance pid assigned at commit time is reported as the
// operation's resource id and is the target of rollback deletion.
type managedServiceCreateOperation struct {
	admin      ports.ServiceAdmin
	factoryPid string
	cfg        map[string]any

	createdPid string
}

func newManagedServiceCreateOperation(admin ports.ServiceAdmin, factoryPid string, cfg map[string]any) *managedServiceCreateOperation {
	return &managedServiceCreateOperation{
		admin:      admin,
		factoryPid: factoryPid,
		cfg:        maps.Clone(cfg),
	}
}

func (o *managedServiceCreateOperation) Commit(ctx context.Context) (string, error) {
	pid, err := o.admin.CreateFactoryConfig(ctx, o.factoryPid, o.cfg)
	if err != nil {
		return "", domain.OperationFailed(err, "creating managed service under %q", o.factoryPid)
	}
	o.createdPid = pid
	return pid, nil
}

func (o *managedServiceCreateOperation) Rollback(ctx context.Context) error {
	if o.createdPid == "" {
		return nil
	}
	if err := o.admin.DeleteConfig(ctx, o.createdPid); err != nil {
		return &domain.OperationError{
			Cause:      "deleting managed service " + o.createdPid,
			ResourceID: o.createdPid,
			Err:        err,
		}
	}
	return nil
}

// managedServiceDeleteOperation deletes a service instance, keeping its
// configuration so rollback can recreate an equivalent instance under the
// same factory. The recreated instance carries a fresh pid; compensation
// restores the configuration, not the identifier.
type managedServiceDeleteOperation struct {
	admin      ports.ServiceAdmin
	pid        string
	factoryPid string
	snapshot   map[string]any
}

func newManagedServiceDeleteOperation(ctx context.Context, admin ports.ServiceAdmin, pid string) (*managedServiceDeleteOperation, error) {
	current, err := admin.Config(ctx, pid)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading config of managed service %q", pid)
	}

	return &managedServiceDeleteOperation{
		admin:      admin,
		pid:        pid,
		factoryPid: factoryPidOf(pid),
		snapshot:   current,
	}, nil
}

func (o *managedServiceDeleteOperation) Commit(ctx context.Context) (string, error) {
	if err := o.admin.DeleteConfig(ctx, o.pid); err != nil {
		return "", domain.OperationFailed(err, "deleting managed service %q", o.pid)
	}
	return "", nil
}

func (o *managedServiceDeleteOperation) Rollback(ctx context.Context) error {
	if _, err := o.admin.CreateFactoryConfig(ctx, o.factoryPid, o.snapshot); err != nil {
		return domain.OperationFailed(err, "recreating managed service under %q", o.factoryPid)
	}
	return nil
}

// factoryPidOf strips the instance suffix from a managed-service pid
// ("org.example.factory.<uuid>" -> "org.example.factory").
func factoryPidOf(pid string) string {
	if i := strings.LastIndexByte(pid, '.'); i > 0 {
		return pid[:i]
	}
	return pid
}
