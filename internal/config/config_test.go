package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("expected auto migrate to default to true")
	}
	if cfg.Auth.CookieName != "session" {
		t.Errorf("expected cookie name session, got %q", cfg.Auth.CookieName)
	}
	if len(cfg.Server.AllowedOrigins) != 0 {
		t.Errorf("expected no cross-origin access by default, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/tudu-test.db")
	t.Setenv("BLUEPRINT_DB_HOST", "db.internal")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,https://tudu.app")
	t.Setenv("DB_CONN_MAX_LIFETIME", "15m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected driver to be normalized to sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.SQLitePath != "/tmp/tudu-test.db" {
		t.Errorf("unexpected sqlite path %q", cfg.Database.SQLitePath)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("unexpected host %q", cfg.Database.Host)
	}
	if cfg.Database.ConnMaxLifetime != 15*time.Minute {
		t.Errorf("expected 15m lifetime, got %v", cfg.Database.ConnMaxLifetime)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://tudu.app" {
		t.Errorf("unexpected allowed origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("AUTH_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "tudu.yaml")
	content := `
server:
  port: 7070
database:
  driver: sqlite
  sqlite_path: ./data/tudu.db
log:
  level: debug
  format: json
auth:
  secret: from-file
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Database.SQLitePath != "./data/tudu.db" {
		t.Errorf("unexpected sqlite path %q", cfg.Database.SQLitePath)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %q", cfg.Log.Format)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Errorf("expected env to override file, got %q", cfg.Auth.Secret)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"AUTH_SECRET": ""},
			wantErr: "AUTH_SECRET",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"AUTH_SECRET": "s", "DB_DRIVER": "mysql"},
			wantErr: "unsupported database driver",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"AUTH_SECRET": "s", "PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "wildcard origin",
			env:     map[string]string{"AUTH_SECRET": "s", "CORS_ALLOWED_ORIGINS": "https://*"},
			wantErr: "wildcard CORS origin",
		},
		{
			name:    "any origin",
			env:     map[string]string{"AUTH_SECRET": "s", "CORS_ALLOWED_ORIGINS": "http://localhost:3000,*"},
			wantErr: "wildcard CORS origin",
		},
		{
			name:    "port not a number",
			env:     map[string]string{"AUTH_SECRET": "s", "PORT": "eighty"},
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: "5432", Database: "tudu",
		Username: "user", Password: "pw", SSLMode: "disable",
	}
	want := "host=localhost user=user password=pw dbname=tudu port=5432 sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	d.Schema = "app"
	if got := d.DSN(); !strings.HasSuffix(got, " search_path=app") {
		t.Errorf("expected search_path suffix, got %q", got)
	}
}
