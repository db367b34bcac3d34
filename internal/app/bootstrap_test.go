package app

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	body := "accounts:\n  dir: \"" + filepath.Join(dir, "accounts") + "\"\n" +
		"storage:\n  path: \"" + filepath.Join(dir, "db", "test.db") + "\"\n" +
		"registry:\n  unique_names: true\n" +
		"logging:\n  level: \"error\"\n  file: \"" + filepath.Join(dir, "logs", "app.log") + "\"\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBootstrap_Initialize(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir)

	b := NewBootstrap()
	if err := b.Initialize(path); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	if !b.Config.Registry.UniqueNames {
		t.Error("unique_names not loaded")
	}
	if b.Accounts.Dir() != filepath.Join(dir, "accounts") {
		t.Errorf("unexpected accounts dir %q", b.Accounts.Dir())
	}
	if b.Service == nil || b.Processor == nil {
		t.Fatal("service and processor must be wired")
	}

	id, err := b.Service.CreateIndex("persisted", nil)
	if err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	b.Close()

	// A second start sees the persisted index and keeps counting from it.
	again := NewBootstrap()
	if err := again.Initialize(path); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	t.Cleanup(func() { again.Close() })

	entry, err := again.Service.LookupIndex("persisted")
	if err != nil || entry.ID != id {
		t.Fatalf("expected persisted index %d, got %+v (%v)", id, entry, err)
	}
	next, err := again.Service.CreateIndex("next", nil)
	if err != nil {
		t.Fatalf("CreateIndex failed: %v", err)
	}
	if next <= id {
		t.Errorf("ids must keep increasing across restarts: %d after %d", next, id)
	}
}

func TestBootstrap_MissingConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PYTH_INDEX_DB_PATH", filepath.Join(dir, "env.db"))
	t.Setenv("PYTH_INDEX_ACCOUNTS_DIR", filepath.Join(dir, "acc"))
	chdir(t, dir) // default log file is relative

	b := NewBootstrap()
	if err := b.Initialize(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	if b.Config.Storage.Path != filepath.Join(dir, "env.db") {
		t.Errorf("env override not applied: %q", b.Config.Storage.Path)
	}
	if b.Config.Walker.WindowLimit != 10 {
		t.Errorf("expected default window 10, got %d", b.Config.Walker.WindowLimit)
	}
}

func TestBootstrap_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("PYTH_INDEX_WINDOW_LIMIT", "") // keep the variable scoped to this test

	env := "PYTH_INDEX_WINDOW_LIMIT=4\nPYTH_INDEX_DB_PATH=" + filepath.Join(dir, "dotenv.db") + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("PYTH_INDEX_WINDOW_LIMIT")
	t.Cleanup(func() { os.Unsetenv("PYTH_INDEX_DB_PATH") })

	b := NewBootstrap()
	if err := b.Initialize(filepath.Join(dir, "missing.yaml")); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer b.Close()

	if b.Config.Walker.WindowLimit != 4 {
		t.Errorf("expected window 4 from .env, got %d", b.Config.Walker.WindowLimit)
	}
	if b.Service.WindowLimit() != 4 {
		t.Errorf("service window not wired: %d", b.Service.WindowLimit())
	}
}
