package dto

import (
	"fmt"
	"strings"

	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/domain/directory"
	"github.com/adimka/admin-console-beta/internal/ports"
)

const msgRequired = "is required"

// knownChangeKinds lists the accepted values of ChangeRequest.Kind.
var knownChangeKinds = map[string]ports.ChangeKind{
	"start_component":        ports.ChangeStartComponent,
	"stop_component":         ports.ChangeStopComponent,
	"install_feature":        ports.ChangeInstallFeature,
	"uninstall_feature":      ports.ChangeUninstallFeature,
	"create_settings":        ports.ChangeCreateSettings,
	"update_settings":        ports.ChangeUpdateSettings,
	"delete_settings":        ports.ChangeDeleteSettings,
	"update_service_config":  ports.ChangeUpdateServiceConfig,
	"create_managed_service": ports.ChangeCreateManagedService,
	"delete_managed_service": ports.ChangeDeleteManagedService,
}

// ChangeRequest represents one change within a batch request body. Which
// fields are required depends on kind; field-level rules are enforced by the
// application layer.
type ChangeRequest struct {
	Kind         string            `json:"kind"`
	Name         string            `json:"name,omitempty"`
	Path         string            `json:"path,omitempty"`
	Pid          string            `json:"pid,omitempty"`
	FactoryPid   string            `json:"factory_pid,omitempty"`
	Settings     map[string]string `json:"settings,omitempty"`
	Config       map[string]any    `json:"config,omitempty"`
	KeepExisting bool              `json:"keep_existing,omitempty"`
}

// BatchRequest represents the JSON body for applying a configuration batch.
type BatchRequest struct {
	Changes []ChangeRequest `json:"changes"`
}

// Validate checks that the batch is non-empty and every change carries a
// known kind. Returns a *domain.ValidationError if any checks fail.
func (r *BatchRequest) Validate() error {
	fields := make(map[string]string)

	if len(r.Changes) == 0 {
		fields["changes"] = "must not be empty"
	}
	for i, ch := range r.Changes {
		if _, ok := knownChangeKinds[ch.Kind]; !ok {
			fields[fmt.Sprintf("changes[%d].kind", i)] = fmt.Sprintf("unknown change kind %q", ch.Kind)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToChangeRequests converts the request body to the application-layer
// change list. Call Validate first.
func (r *BatchRequest) ToChangeRequests() []ports.ChangeRequest {
	changes := make([]ports.ChangeRequest, len(r.Changes))
	for i, ch := range r.Changes {
		changes[i] = ports.ChangeRequest{
			Kind:         knownChangeKinds[ch.Kind],
			Name:         ch.Name,
			Path:         ch.Path,
			Pid:          ch.Pid,
			FactoryPid:   ch.FactoryPid,
			Settings:     ch.Settings,
			Config:       ch.Config,
			KeepExisting: ch.KeepExisting,
		}
	}
	return changes
}

// DirectoryTestRequest represents the JSON body for a directory probe.
type DirectoryTestRequest struct {
	HostName          string `json:"host_name"`
	Port              int    `json:"port"`
	Encryption        string `json:"encryption"`
	BindUser          string `json:"bind_user"`
	BindUserPassword  string `json:"bind_user_password"`
	BindMethod        string `json:"bind_method"`
	Realm             string `json:"realm,omitempty"`
	BaseUserDN        string `json:"base_user_dn,omitempty"`
	BaseGroupDN       string `json:"base_group_dn,omitempty"`
	UserNameAttribute string `json:"user_name_attribute,omitempty"`
	UseCase           string `json:"use_case"`
}

// Validate checks that the directory configuration is buildable.
// Returns a *domain.ValidationError with per-field details on failure.
func (r *DirectoryTestRequest) Validate() error {
	_, err := r.ToConfig()
	return err
}

// ToConfig builds the immutable domain configuration from the request body.
func (r *DirectoryTestRequest) ToConfig() (directory.Config, error) {
	return directory.NewBuilder().
		HostName(strings.TrimSpace(r.HostName)).
		Port(r.Port).
		Encryption(directory.EncryptionMethod(r.Encryption)).
		BindUser(r.BindUser, r.BindUserPassword).
		BindMethod(directory.BindMethod(r.BindMethod)).
		Realm(r.Realm).
		BaseUserDN(r.BaseUserDN).
		BaseGroupDN(r.BaseGroupDN).
		UserNameAttribute(r.UserNameAttribute).
		UseCase(directory.UseCase(r.UseCase)).
		Build()
}
