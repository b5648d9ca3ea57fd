// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"github.com/adimka/admin-console-beta/internal/domain/directory"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// ChangeOutcomeResponse represents the outcome of one change within a batch
// response.
type ChangeOutcomeResponse struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Cause      string `json:"cause,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
}

// BatchResponse represents the result of applying a configuration batch.
type BatchResponse struct {
	Succeeded bool                    `json:"succeeded"`
	Outcomes  []ChangeOutcomeResponse `json:"outcomes"`
}

// ToBatchResponse converts an application-layer batch report to an HTTP
// response DTO.
func ToBatchResponse(report *ports.BatchReport) BatchResponse {
	outcomes := make([]ChangeOutcomeResponse, len(report.Outcomes))
	for i, o := range report.Outcomes {
		outcomes[i] = ChangeOutcomeResponse{
			Key:        o.Key,
			Kind:       string(o.Request.Kind),
			Status:     o.Result.Status.String(),
			Cause:      o.Result.Cause,
			ResourceID: o.Result.ResourceID,
		}
	}
	return BatchResponse{
		Succeeded: report.Succeeded,
		Outcomes:  outcomes,
	}
}

// ComponentStateResponse represents a component's run state.
type ComponentStateResponse struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// FeatureStateResponse represents a feature's install state.
type FeatureStateResponse struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
}

// SettingsResponse represents the contents of a settings file.
type SettingsResponse struct {
	Path     string            `json:"path"`
	Settings map[string]string `json:"settings"`
}

// ServiceConfigResponse represents one service's configuration.
type ServiceConfigResponse struct {
	Pid    string         `json:"pid"`
	Config map[string]any `json:"config"`
}

// ManagedServicesResponse represents all managed-service instances under a
// factory pid, keyed by instance pid.
type ManagedServicesResponse struct {
	FactoryPid string                    `json:"factory_pid"`
	Instances  map[string]map[string]any `json:"instances"`
}

// ProbeResponse represents the outcome of a directory probe.
type ProbeResponse struct {
	Probe     string `json:"probe"`
	Result    string `json:"result"`
	Succeeded bool   `json:"succeeded"`
}

// ToProbeResponse converts a domain probe result to an HTTP response DTO.
func ToProbeResponse(probe string, result directory.ProbeResult) ProbeResponse {
	return ProbeResponse{
		Probe:     probe,
		Result:    result.String(),
		Succeeded: result.Succeeded(),
	}
}
