package configurator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"testing"

	"github.com/adimka/admin-console-beta/internal/domain"
)

// fakeRuntime is an in-memory ComponentRuntime.
type fakeRuntime struct {
	running    map[string]bool
	startErr   error
	stopErr    error
	startCalls int
	stopCalls  int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{running: make(map[string]bool)}
}

func (f *fakeRuntime) IsRunning(_ context.Context, name string) (bool, error) {
	return f.running[name], nil
}

func (f *fakeRuntime) Start(_ context.Context, name string) error {
	f.startCalls++
	if f.startErr != nil {
		return f.startErr
	}
	f.running[name] = true
	return nil
}

func (f *fakeRuntime) Stop(_ context.Context, name string) error {
	f.stopCalls++
	if f.stopErr != nil {
		return f.stopErr
	}
	f.running[name] = false
	return nil
}

// fakeFeatures is an in-memory FeatureManager.
type fakeFeatures struct {
	installed  map[string]bool
	installErr error
}

func newFakeFeatures() *fakeFeatures {
	return &fakeFeatures{installed: make(map[string]bool)}
}

func (f *fakeFeatures) IsInstalled(_ context.Context, name string) (bool, error) {
	return f.installed[name], nil
}

func (f *fakeFeatures) Install(_ context.Context, name string) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installed[name] = true
	return nil
}

func (f *fakeFeatures) Uninstall(_ context.Context, name string) error {
	f.installed[name] = false
	return nil
}

// fakeStore is an in-memory SettingsStore.
type fakeStore struct {
	files    map[string]map[string]string
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]map[string]string)}
}

func (f *fakeStore) Read(_ context.Context, path string) (map[string]string, error) {
	s, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("settings file %q: %w", path, domain.ErrNotFound)
	}
	return maps.Clone(s), nil
}

func (f *fakeStore) Write(_ context.Context, path string, settings map[string]string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[path] = maps.Clone(settings)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

// fakeAdmin is an in-memory ServiceAdmin. Factory instance pids are assigned
// sequentially for deterministic assertions.
type fakeAdmin struct {
	configs   map[string]map[string]any
	nextID    int
	createErr error
	deleteErr error
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{configs: make(map[string]map[string]any)}
}

func (f *fakeAdmin) Config(_ context.Context, pid string) (map[string]any, error) {
	cfg, ok := f.configs[pid]
	if !ok {
		return map[string]any{}, nil
	}
	return maps.Clone(cfg), nil
}

func (f *fakeAdmin) UpdateConfig(_ context.Context, pid string, cfg map[string]any) error {
	f.configs[pid] = maps.Clone(cfg)
	return nil
}

func (f *fakeAdmin) CreateFactoryConfig(_ context.Context, factoryPid string, cfg map[string]any) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	pid := fmt.Sprintf("%s.%d", factoryPid, f.nextID)
	f.configs[pid] = maps.Clone(cfg)
	return pid, nil
}

func (f *fakeAdmin) DeleteConfig(_ context.Context, pid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.configs[pid]; !ok {
		return fmt.Errorf("service %q: %w", pid, domain.ErrNotFound)
	}
	delete(f.configs, pid)
	return nil
}

func (f *fakeAdmin) FactoryConfigs(_ context.Context, factoryPid string) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any)
	for pid, cfg := range f.configs {
		if pid != factoryPid && factoryPidOf(pid) == factoryPid {
			out[pid] = maps.Clone(cfg)
		}
	}
	return out, nil
}

type fixture struct {
	runtime  *fakeRuntime
	features *fakeFeatures
	store    *fakeStore
	admin    *fakeAdmin
	c        *Configurator
}

func newFixture() *fixture {
	f := &fixture{
		runtime:  newFakeRuntime(),
		features: newFakeFeatures(),
		store:    newFakeStore(),
		admin:    newFakeAdmin(),
	}
	f.c = New(f.runtime, f.features, f.store, f.admin,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

// --- Component operations ---

func TestStartComponent_Commit(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, err := f.c.StartComponent(ctx, "indexer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusPass)
	if !f.runtime.running["indexer"] {
		t.Fatal("component should be running")
	}
}

func TestStartComponent_NoOpWhenAlreadyRunning(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.runtime.running["indexer"] = true

	key, _ := f.c.StartComponent(ctx, "indexer")
	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusPass)
	if f.runtime.startCalls != 0 {
		t.Fatalf("start called %d times, want 0", f.runtime.startCalls)
	}
}

func TestStopComponent_RollbackRestartsIt(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.runtime.running["indexer"] = true

	key, _ := f.c.StopComponent(ctx, "indexer")
	_, _ = f.c.InstallFeature(ctx, "broken")
	f.features.installErr = errors.New("resolver error")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	if !f.runtime.running["indexer"] {
		t.Fatal("rollback should restart the component")
	}
}

func TestStartComponent_NoOpRollbackLeavesStateAlone(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.runtime.running["indexer"] = true

	// A no-op commit must roll back as a no-op too.
	_, _ = f.c.StartComponent(ctx, "indexer")
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	_, _ = f.c.Commit(ctx)

	if f.runtime.startCalls != 0 || f.runtime.stopCalls != 0 {
		t.Fatalf("no-op operation touched the runtime: %d starts, %d stops",
			f.runtime.startCalls, f.runtime.stopCalls)
	}
}

// --- Feature operations ---

func TestInstallFeature_CommitAndRollback(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, _ := f.c.InstallFeature(ctx, "search")
	f.runtime.startErr = errors.New("boom")
	_, _ = f.c.StartComponent(ctx, "indexer")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	if f.features.installed["search"] {
		t.Fatal("rollback should uninstall the feature")
	}
}

func TestUninstallFeature_Commit(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.features.installed["search"] = true

	key, _ := f.c.UninstallFeature(ctx, "search")
	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusPass)
	if f.features.installed["search"] {
		t.Fatal("feature should be uninstalled")
	}
}

// --- Settings operations ---

func TestCreateSettingsFile_Commit(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, err := f.c.CreateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusPass)
	if f.store.files["etc/indexer.yaml"]["mode"] != "fast" {
		t.Fatal("settings file not written")
	}
}

func TestCreateSettingsFile_ExistingFileRejected(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "slow"}

	_, err := f.c.CreateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}

func TestCreateSettingsFile_RollbackDeletesIt(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	_, _ = f.c.CreateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"})
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	_, _ = f.c.Commit(ctx)

	if _, ok := f.store.files["etc/indexer.yaml"]; ok {
		t.Fatal("rollback should delete the created file")
	}
}

func TestUpdateSettingsFile_KeepExistingMerges(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "slow", "threads": "2"}

	key, _ := f.c.UpdateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"}, true)
	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusPass)
	got := f.store.files["etc/indexer.yaml"]
	if got["mode"] != "fast" || got["threads"] != "2" {
		t.Fatalf("merge produced %v", got)
	}
}

func TestUpdateSettingsFile_ReplaceDropsOtherKeys(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "slow", "threads": "2"}

	_, _ = f.c.UpdateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"}, false)
	_, _ = f.c.Commit(ctx)

	got := f.store.files["etc/indexer.yaml"]
	if len(got) != 1 || got["mode"] != "fast" {
		t.Fatalf("replace produced %v", got)
	}
}

func TestUpdateSettingsFile_RollbackRestoresSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "slow"}

	key, _ := f.c.UpdateSettingsFile(ctx, "etc/indexer.yaml", map[string]string{"mode": "fast"}, false)
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	if f.store.files["etc/indexer.yaml"]["mode"] != "slow" {
		t.Fatal("rollback should restore the original contents")
	}
}

func TestUpdateSettingsFile_MissingFile(t *testing.T) {
	t.Parallel()
	f := newFixture()

	_, err := f.c.UpdateSettingsFile(context.Background(), "etc/absent.yaml", map[string]string{"a": "b"}, false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteSettingsFile_RollbackRecreatesIt(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "slow"}

	key, _ := f.c.DeleteSettingsFile(ctx, "etc/indexer.yaml")
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	if f.store.files["etc/indexer.yaml"]["mode"] != "slow" {
		t.Fatal("rollback should recreate the deleted file")
	}
}

// --- Service operations ---

func TestUpdateServiceConfig_RollbackRestoresSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.admin.configs["org.example.indexer"] = map[string]any{"enabled": true, "batch": 10}

	key, _ := f.c.UpdateServiceConfig(ctx, "org.example.indexer", map[string]any{"batch": 50}, true)
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	got := f.admin.configs["org.example.indexer"]
	if got["batch"] != 10 || got["enabled"] != true {
		t.Fatalf("rollback produced %v", got)
	}
}

func TestUpdateServiceConfig_KeepExistingMerges(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.admin.configs["org.example.indexer"] = map[string]any{"enabled": true, "batch": 10}

	_, _ = f.c.UpdateServiceConfig(ctx, "org.example.indexer", map[string]any{"batch": 50}, true)
	_, _ = f.c.Commit(ctx)

	got := f.admin.configs["org.example.indexer"]
	if got["batch"] != 50 || got["enabled"] != true {
		t.Fatalf("merge produced %v", got)
	}
}

func TestCreateManagedService_ReportsInstancePid(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key := f.c.CreateManagedService("org.example.source", map[string]any{"url": "ldap://a"})
	report, _ := f.c.Commit(ctx)

	res, _ := report.Result(key)
	if res.Status != StatusPass {
		t.Fatalf("got status %v, want pass", res.Status)
	}
	if res.ResourceID != "org.example.source.1" {
		t.Fatalf("got resource id %q, want %q", res.ResourceID, "org.example.source.1")
	}
	if _, ok := f.admin.configs["org.example.source.1"]; !ok {
		t.Fatal("instance not created")
	}
}

func TestCreateManagedService_RollbackDeletesInstance(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key := f.c.CreateManagedService("org.example.source", map[string]any{"url": "ldap://a"})
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)
	if len(f.admin.configs) != 0 {
		t.Fatalf("instance should be deleted, got %v", f.admin.configs)
	}
}

func TestCreateManagedService_RollbackFailureReportsOrphanPid(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key := f.c.CreateManagedService("org.example.source", map[string]any{"url": "ldap://a"})
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")
	f.admin.deleteErr = errors.New("delete rejected")

	report, _ := f.c.Commit(ctx)

	res, _ := report.Result(key)
	if res.Status != StatusRollbackFail {
		t.Fatalf("got status %v, want rollback_fail", res.Status)
	}
	if res.ResourceID != "org.example.source.1" {
		t.Fatalf("orphan pid lost: got %q", res.ResourceID)
	}
}

func TestDeleteManagedService_RollbackRecreatesUnderFactory(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.admin.configs["org.example.source.7"] = map[string]any{"url": "ldap://a"}

	key, err := f.c.DeleteManagedService(ctx, "org.example.source.7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.features.installErr = errors.New("boom")
	_, _ = f.c.InstallFeature(ctx, "broken")

	report, _ := f.c.Commit(ctx)

	assertStatus(t, report, key, StatusRolledBack)

	instances, _ := f.admin.FactoryConfigs(ctx, "org.example.source")
	if len(instances) != 1 {
		t.Fatalf("got %d instances, want 1 recreated", len(instances))
	}
	for _, cfg := range instances {
		if cfg["url"] != "ldap://a" {
			t.Fatalf("recreated config %v lost properties", cfg)
		}
	}
}

func TestDeleteManagedService_MissingInstanceFailsAtCommit(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, err := f.c.DeleteManagedService(ctx, "org.example.source.9")
	if err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	report, err := f.c.Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TransactionSucceeded() {
		t.Fatal("expected failed batch")
	}
	res, _ := report.Result(key)
	if res.Status != StatusFail {
		t.Fatalf("got status %v, want fail", res.Status)
	}
}

func TestUpdateServiceConfig_NewServiceCreatesConfig(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, err := f.c.UpdateServiceConfig(ctx, "org.example.fresh", map[string]any{"batch": 25}, true)
	if err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	report, err := f.c.Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStatus(t, report, key, StatusPass)

	if cfg := f.admin.configs["org.example.fresh"]; cfg["batch"] != 25 {
		t.Fatalf("got %v, want created config", cfg)
	}
}

func TestUpdateServiceConfig_NewServiceRollbackRestoresEmptyConfig(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()

	key, err := f.c.UpdateServiceConfig(ctx, "org.example.fresh", map[string]any{"batch": 25}, false)
	if err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}
	f.features.installErr = errors.New("resolver unavailable")
	failKey, err := f.c.InstallFeature(ctx, "broken")
	if err != nil {
		t.Fatalf("unexpected registration error: %v", err)
	}

	report, err := f.c.Commit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStatus(t, report, key, StatusRolledBack)
	assertStatus(t, report, failKey, StatusFail)

	if cfg := f.admin.configs["org.example.fresh"]; len(cfg) != 0 {
		t.Fatalf("got %v, want initial empty config restored", cfg)
	}
}

// --- Read-only queries ---

func TestQueries_BypassBatch(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	f.runtime.running["indexer"] = true
	f.features.installed["search"] = true
	f.store.files["etc/indexer.yaml"] = map[string]string{"mode": "fast"}
	f.admin.configs["org.example.indexer"] = map[string]any{"batch": 10}

	// Registrations do not change observable state before commit.
	_, _ = f.c.StopComponent(ctx, "indexer")

	running, err := f.c.IsComponentRunning(ctx, "indexer")
	if err != nil || !running {
		t.Fatalf("got (%v, %v), want (true, nil)", running, err)
	}

	installed, _ := f.c.IsFeatureInstalled(ctx, "search")
	if !installed {
		t.Fatal("expected feature installed")
	}

	settings, err := f.c.Settings(ctx, "etc/indexer.yaml")
	if err != nil || settings["mode"] != "fast" {
		t.Fatalf("got (%v, %v)", settings, err)
	}

	cfg, err := f.c.ServiceConfig(ctx, "org.example.indexer")
	if err != nil || cfg["batch"] != 10 {
		t.Fatalf("got (%v, %v)", cfg, err)
	}
}
