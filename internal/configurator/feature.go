package configurator

import (
	"context"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// featureOperation toggles a feature between installed and uninstalled.
type featureOperation struct {
	features ports.FeatureManager
	name     string
	desired  bool
	initial  bool
}

func newFeatureOperation(ctx context.Context, features ports.FeatureManager, name string, desired bool) (*featureOperation, error) {
	installed, err := features.IsInstalled(ctx, name)
	if err != nil {
		return nil, domain.OperationFailed(err, "reading state of feature %q", name)
	}

	return &featureOperation{
		features: features,
		name:     name,
		desired:  desired,
		initial:  installed,
	}, nil
}

func (o *featureOperation) Commit(ctx context.Context) (string, error) {
	if o.desired == o.initial {
		return "", nil
	}
	return "", o.setInstalled(ctx, o.desired)
}

func (o *featureOperation) Rollback(ctx context.Context) error {
	if o.desired == o.initial {
		return nil
	}
	return o.setInstalled(ctx, o.initial)
}

func (o *featureOperation) setInstalled(ctx context.Context, installed bool) error {
	if installed {
		if err := o.features.Install(ctx, o.name); err != nil {
			return domain.OperationFailed(err, "installing feature %q", o.name)
		}
		return nil
	}

	if err := o.features.Uninstall(ctx, o.name); err != nil {
		return domain.OperationFailed(err, "uninstalling feature %q", o.name)
	}
	return nil
}
