package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/adimka/admin-console-beta/internal/configurator"
	"github.com/adimka/admin-console-beta/internal/domain/directory"
	"github.com/adimka/admin-console-beta/internal/ports"
)

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

// fakeBatchService implements ports.BatchService with canned responses.
type fakeBatchService struct {
	report     *ports.BatchReport
	applyErr   error
	gotChanges []ports.ChangeRequest
	running    bool
	installed  bool
	settings   map[string]string
	config     map[string]any
	instances  map[string]map[string]any
	queryErr   error
}

func (f *fakeBatchService) Apply(_ context.Context, changes []ports.ChangeRequest) (*ports.BatchReport, error) {
	f.gotChanges = changes
	return f.report, f.applyErr
}

func (f *fakeBatchService) ComponentRunning(_ context.Context, _ string) (bool, error) {
	return f.running, f.queryErr
}

func (f *fakeBatchService) FeatureInstalled(_ context.Context, _ string) (bool, error) {
	return f.installed, f.queryErr
}

func (f *fakeBatchService) Settings(_ context.Context, _ string) (map[string]string, error) {
	return f.settings, f.queryErr
}

func (f *fakeBatchService) ServiceConfig(_ context.Context, _ string) (map[string]any, error) {
	return f.config, f.queryErr
}

func (f *fakeBatchService) ManagedServiceConfigs(_ context.Context, _ string) (map[string]map[string]any, error) {
	return f.instances, f.queryErr
}

// fakeDirectoryService implements ports.DirectoryService with canned results.
type fakeDirectoryService struct {
	result   directory.ProbeResult
	err      error
	gotProbe string
}

func (f *fakeDirectoryService) TestConnect(_ context.Context, _ directory.Config) (directory.ProbeResult, error) {
	f.gotProbe = "connect"
	return f.result, f.err
}

func (f *fakeDirectoryService) TestBind(_ context.Context, _ directory.Config) (directory.ProbeResult, error) {
	f.gotProbe = "bind"
	return f.result, f.err
}

func passReport(changes ...ports.ChangeRequest) *ports.BatchReport {
	report := &ports.BatchReport{Succeeded: true}
	for i, ch := range changes {
		report.Outcomes = append(report.Outcomes, ports.ChangeOutcome{
			Request: ch,
			Key:     "key-" + string(rune('a'+i)),
			Result:  configurator.Pass(),
		})
	}
	return report
}
