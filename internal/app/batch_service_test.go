package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/adimka/admin-console-beta/internal/configurator"
	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/platform/audit"
	"github.com/adimka/admin-console-beta/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakePlatform implements the four platform ports with in-memory state.
type fakePlatform struct {
	running    map[string]bool
	installed  map[string]bool
	files      map[string]map[string]string
	configs    map[string]map[string]any
	installErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		running:   make(map[string]bool),
		installed: make(map[string]bool),
		files:     make(map[string]map[string]string),
		configs:   make(map[string]map[string]any),
	}
}

func (f *fakePlatform) IsRunning(_ context.Context, name string) (bool, error) {
	return f.running[name], nil
}
func (f *fakePlatform) Start(_ context.Context, name string) error {
	f.running[name] = true
	return nil
}
func (f *fakePlatform) Stop(_ context.Context, name string) error {
	f.running[name] = false
	return nil
}

func (f *fakePlatform) IsInstalled(_ context.Context, name string) (bool, error) {
	return f.installed[name], nil
}
func (f *fakePlatform) Install(_ context.Context, name string) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installed[name] = true
	return nil
}
func (f *fakePlatform) Uninstall(_ context.Context, name string) error {
	f.installed[name] = false
	return nil
}

func (f *fakePlatform) Read(_ context.Context, path string) (map[string]string, error) {
	s, ok := f.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}
func (f *fakePlatform) Write(_ context.Context, path string, settings map[string]string) error {
	f.files[path] = settings
	return nil
}
func (f *fakePlatform) Delete(_ context.Context, path string) error {
	delete(f.files, path)
	return nil
}
func (f *fakePlatform) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakePlatform) Config(_ context.Context, pid string) (map[string]any, error) {
	cfg, ok := f.configs[pid]
	if !ok {
		return map[string]any{}, nil
	}
	return cfg, nil
}
func (f *fakePlatform) UpdateConfig(_ context.Context, pid string, cfg map[string]any) error {
	f.configs[pid] = cfg
	return nil
}
func (f *fakePlatform) CreateFactoryConfig(_ context.Context, factoryPid string, cfg map[string]any) (string, error) {
	pid := factoryPid + ".instance"
	f.configs[pid] = cfg
	return pid, nil
}
func (f *fakePlatform) DeleteConfig(_ context.Context, pid string) error {
	delete(f.configs, pid)
	return nil
}
func (f *fakePlatform) FactoryConfigs(_ context.Context, _ string) (map[string]map[string]any, error) {
	return f.configs, nil
}

func newTestBatchService(platform *fakePlatform, auditSink *bytes.Buffer) *BatchService {
	factory := func() *configurator.Configurator {
		return configurator.New(platform, platform, platform, platform, discardLogger())
	}

	auditLogger := discardLogger()
	if auditSink != nil {
		auditLogger = slog.New(slog.NewJSONHandler(auditSink, nil))
	}

	return NewBatchService(factory, audit.New(auditLogger), discardLogger())
}

func TestApply_EmptyBatch(t *testing.T) {
	t.Parallel()
	svc := newTestBatchService(newFakePlatform(), nil)

	_, err := svc.Apply(context.Background(), nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestApply_AppliesChangesInOrder(t *testing.T) {
	t.Parallel()
	platform := newFakePlatform()
	platform.files["etc/app.yaml"] = map[string]string{"mode": "slow"}
	svc := newTestBatchService(platform, nil)

	report, err := svc.Apply(context.Background(), []ports.ChangeRequest{
		{Kind: ports.ChangeStartComponent, Name: "indexer"},
		{Kind: ports.ChangeInstallFeature, Name: "search"},
		{Kind: ports.ChangeUpdateSettings, Path: "etc/app.yaml",
			Settings: map[string]string{"mode": "fast"}, KeepExisting: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.Succeeded {
		t.Fatal("expected batch success")
	}
	if len(report.Outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(report.Outcomes))
	}
	for i, o := range report.Outcomes {
		if o.Result.Status != configurator.StatusPass {
			t.Fatalf("outcome %d: got %v, want pass", i, o.Result.Status)
		}
	}
	if !platform.running["indexer"] || !platform.installed["search"] {
		t.Fatal("changes not applied")
	}
	if platform.files["etc/app.yaml"]["mode"] != "fast" {
		t.Fatal("settings not updated")
	}
}

func TestApply_ReportsFailureOutcomesPerChange(t *testing.T) {
	t.Parallel()
	platform := newFakePlatform()
	platform.installErr = errors.New("resolver error")
	svc := newTestBatchService(platform, nil)

	report, err := svc.Apply(context.Background(), []ports.ChangeRequest{
		{Kind: ports.ChangeStartComponent, Name: "indexer"},
		{Kind: ports.ChangeInstallFeature, Name: "broken"},
		{Kind: ports.ChangeStopComponent, Name: "indexer"},
	})
	if err != nil {
		t.Fatalf("operation failures must not be errors, got %v", err)
	}

	if report.Succeeded {
		t.Fatal("expected batch failure")
	}
	want := []configurator.Status{
		configurator.StatusRolledBack,
		configurator.StatusFail,
		configurator.StatusSkip,
	}
	for i, o := range report.Outcomes {
		if o.Result.Status != want[i] {
			t.Fatalf("outcome %d: got %v, want %v", i, o.Result.Status, want[i])
		}
	}
	if platform.running["indexer"] {
		t.Fatal("component start should be rolled back")
	}
}

func TestApply_InvalidChangeRejectsWholeBatch(t *testing.T) {
	t.Parallel()
	platform := newFakePlatform()
	svc := newTestBatchService(platform, nil)

	_, err := svc.Apply(context.Background(), []ports.ChangeRequest{
		{Kind: ports.ChangeStartComponent, Name: "indexer"},
		{Kind: ports.ChangeInstallFeature}, // missing name
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if platform.running["indexer"] {
		t.Fatal("nothing should be applied when registration fails")
	}
}

func TestApply_UnknownKind(t *testing.T) {
	t.Parallel()
	svc := newTestBatchService(newFakePlatform(), nil)

	_, err := svc.Apply(context.Background(), []ports.ChangeRequest{
		{Kind: "reboot_planet"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestApply_AuditsOnSuccessOnly(t *testing.T) {
	t.Parallel()

	t.Run("success is audited", func(t *testing.T) {
		t.Parallel()
		var sink bytes.Buffer
		svc := newTestBatchService(newFakePlatform(), &sink)

		_, err := svc.Apply(context.Background(), []ports.ChangeRequest{
			{Kind: ports.ChangeStartComponent, Name: "indexer"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(sink.String(), "batch_committed") {
			t.Fatalf("expected audit record, got %q", sink.String())
		}
	})

	t.Run("failure is not audited", func(t *testing.T) {
		t.Parallel()
		var sink bytes.Buffer
		platform := newFakePlatform()
		platform.installErr = errors.New("boom")
		svc := newTestBatchService(platform, &sink)

		_, err := svc.Apply(context.Background(), []ports.ChangeRequest{
			{Kind: ports.ChangeInstallFeature, Name: "broken"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sink.Len() != 0 {
			t.Fatalf("failed batch must not be audited, got %q", sink.String())
		}
	})
}

func TestApply_CreateManagedServiceOutcomeCarriesPid(t *testing.T) {
	t.Parallel()
	svc := newTestBatchService(newFakePlatform(), nil)

	report, err := svc.Apply(context.Background(), []ports.ChangeRequest{
		{Kind: ports.ChangeCreateManagedService, FactoryPid: "org.example.source",
			Config: map[string]any{"url": "ldap://a"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := report.Outcomes[0].Result.ResourceID
	if got != "org.example.source.instance" {
		t.Fatalf("got resource id %q", got)
	}
}

func TestQueries_DelegateToPlatform(t *testing.T) {
	t.Parallel()
	platform := newFakePlatform()
	platform.running["indexer"] = true
	platform.installed["search"] = true
	platform.files["etc/app.yaml"] = map[string]string{"mode": "fast"}
	platform.configs["org.example.indexer"] = map[string]any{"batch": 10}
	svc := newTestBatchService(platform, nil)
	ctx := context.Background()

	if running, err := svc.ComponentRunning(ctx, "indexer"); err != nil || !running {
		t.Fatalf("got (%v, %v)", running, err)
	}
	if installed, err := svc.FeatureInstalled(ctx, "search"); err != nil || !installed {
		t.Fatalf("got (%v, %v)", installed, err)
	}
	if settings, err := svc.Settings(ctx, "etc/app.yaml"); err != nil || settings["mode"] != "fast" {
		t.Fatalf("got (%v, %v)", settings, err)
	}
	if cfg, err := svc.ServiceConfig(ctx, "org.example.indexer"); err != nil || cfg["batch"] != 10 {
		t.Fatalf("got (%v, %v)", cfg, err)
	}
}
