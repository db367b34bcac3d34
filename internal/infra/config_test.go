package infra

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pyth_index/internal/domain"
)

func TestLoadConfig(t *testing.T) {
	yaml := `
app:
  name: pyth-index-test
accounts:
  dir: /tmp/accounts
walker:
  window_limit: 25
registry:
  unique_names: true
storage:
  path: /tmp/test.db
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.App.Name != "pyth-index-test" {
		t.Errorf("App.Name = %q, want %q", cfg.App.Name, "pyth-index-test")
	}
	if cfg.Accounts.Dir != "/tmp/accounts" {
		t.Errorf("Accounts.Dir = %q", cfg.Accounts.Dir)
	}
	if cfg.Walker.WindowLimit != 25 {
		t.Errorf("Walker.WindowLimit = %d, want 25", cfg.Walker.WindowLimit)
	}
	if !cfg.Registry.UniqueNames {
		t.Error("Registry.UniqueNames should be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("app:\n  name: x\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.Walker.WindowLimit != DefaultWindowLimit {
		t.Errorf("WindowLimit = %d, want default %d", cfg.Walker.WindowLimit, DefaultWindowLimit)
	}
	if cfg.Accounts.Dir != DefaultAccountsDir {
		t.Errorf("Accounts.Dir = %q, want default %q", cfg.Accounts.Dir, DefaultAccountsDir)
	}
	if cfg.Storage.Path != DefaultDBPath {
		t.Errorf("Storage.Path = %q, want default %q", cfg.Storage.Path, DefaultDBPath)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if cfg.Registry.UniqueNames {
		t.Error("Registry.UniqueNames should default to false")
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("PYTH_INDEX_DB_PATH", "/override/db.sqlite")
	t.Setenv("PYTH_INDEX_WINDOW_LIMIT", "3")

	cfg, err := ParseConfig([]byte("storage:\n  path: /file/db.sqlite\n"))
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.Storage.Path != "/override/db.sqlite" {
		t.Errorf("Storage.Path = %q, want env override", cfg.Storage.Path)
	}
	if cfg.Walker.WindowLimit != 3 {
		t.Errorf("WindowLimit = %d, want 3", cfg.Walker.WindowLimit)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   string
		field string
	}{
		{"negative window", "walker:\n  window_limit: -1\n", "", "walker.window_limit"},
		{"window above table", "walker:\n  window_limit: 641\n", "", "walker.window_limit"},
		{"max int env window", "", "9223372036854775807", "walker.window_limit"},
		{"bad level", "logging:\n  level: loud\n", "", "logging.level"},
		{"bad env window", "", "ten", "PYTH_INDEX_WINDOW_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("PYTH_INDEX_WINDOW_LIMIT", tt.env)
			}
			_, err := ParseConfig([]byte(tt.yaml))
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}
