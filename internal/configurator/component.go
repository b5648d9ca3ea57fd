package configurator

import (
	"context"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// componentOperation toggles a component between running and stopped. The
// running state observed at construction is the rollback target.
type componentOperation struct {
	runtime ports.ComponentRuntime
	name    string
	desired bool
	initial bool
}

func newComponentOperation(ctx context.Context, runtime ports.ComponentRuntime, name string, desired bool) (*componentOperation, error) {
	running, err := runtime.IsRunning(ctx, name)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading state of component %q", name)
	}

	return &componentOperation{
		runtime: runtime,
		name:    name,
		desired: desired,
		initial: running,
	}, nil
}

func (o *componentOperation) Commit(ctx context.Context) (string, error) {
	if o.desired == o.initial {
		return "", nil
	}
	return "", o.setRunning(ctx, o.desired)
}

func (o *componentOperation) Rollback(ctx context.Context) error {
	if o.desired == o.initial {
		return nil
	}
	return o.setRunning(ctx, o.initial)
}

func (o *componentOperation) setRunning(ctx context.Context, running bool) error {
	if running {
		if err := o.runtime.Start(ctx, o.name); err != nil {
			return domain.OperationFailed(err, "starting component %q", o.name)
		}
		return nil
	}

	if err := o.runtime.Stop(ctx, o.name); err != nil {
		return domain.OperationFailed(err, "stopping component %q", o.name)
	}
	return nil
}
