package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CATALOG_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != "sqlite" || cfg.StoreSource() != filepath.FromSlash("var/catalog.sqlite") {
		t.Fatalf("unexpected store defaults %+v", cfg)
	}
	if cfg.HTTPAddr != "127.0.0.1:8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "catalog.yaml")
	data := []byte("store_driver: postgres\ndatabase_url: postgres://file\nhttp_addr: \":9000\"\nshutdown_timeout: 3s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CATALOG_CONFIG", path)
	t.Setenv("CATALOG_DATABASE_URL", "postgres://env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.StoreDriver)
	}
	if cfg.StoreSource() != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.StoreSource())
	}
	if cfg.HTTPAddr != ":9000" || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected file values %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CATALOG_CONFIG", "")
	t.Setenv("CATALOG_HTTP_ADDR", "")
	os.Unsetenv("CATALOG_HTTP_ADDR")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CATALOG_HTTP_ADDR=:7070\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CATALOG_HTTP_ADDR") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("expected .env value, got %q", cfg.HTTPAddr)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.StoreDriver = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	cfg.StoreDriver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing database url error")
	}
	cfg.DatabaseURL = "postgres://x"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadNormalizesDriverAliases(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CATALOG_CONFIG", "")
	cases := []struct {
		driver string
		want   string
	}{
		{"pgx", "postgres"},
		{"PostgreSQL", "postgres"},
		{"sqlite3", "sqlite"},
	}
	for _, tc := range cases {
		t.Setenv("CATALOG_STORE_DRIVER", tc.driver)
		t.Setenv("CATALOG_DATABASE_URL", "postgres://env")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load %s: %v", tc.driver, err)
		}
		if cfg.StoreDriver != tc.want {
			t.Fatalf("driver %s: expected %s, got %s", tc.driver, tc.want, cfg.StoreDriver)
		}
		dialect, err := cfg.Dialect()
		if err != nil || string(dialect) != tc.want {
			t.Fatalf("driver %s: dialect %q err %v", tc.driver, dialect, err)
		}
	}

	cfg := Defaults()
	cfg.StoreDriver = "pgx"
	cfg.DatabaseURL = "postgres://x"
	if cfg.StoreSource() != "postgres://x" {
		t.Fatalf("alias must select the postgres source, got %q", cfg.StoreSource())
	}
}
