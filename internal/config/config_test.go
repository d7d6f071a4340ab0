package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.DB.Driver != DriverMySQL {
		t.Errorf("Driver = %q, want %q", cfg.DB.Driver, DriverMySQL)
	}
	if cfg.DB.Database != DefaultDatabase {
		t.Errorf("Database = %q, want %q", cfg.DB.Database, DefaultDatabase)
	}
	if cfg.DB.Charset != DefaultCharset {
		t.Errorf("Charset = %q, want %q", cfg.DB.Charset, DefaultCharset)
	}
	if cfg.Email.IMAPServer != DefaultIMAPServer {
		t.Errorf("IMAPServer = %q, want %q", cfg.Email.IMAPServer, DefaultIMAPServer)
	}
	if cfg.LogLevel != DefaultLogLevel || cfg.APIPort != DefaultAPIPort {
		t.Errorf("LogLevel/APIPort = %q/%q", cfg.LogLevel, cfg.APIPort)
	}
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "db": {"driver": "sqlite", "path": "work/emails.db"},
  "email": {"address": "me@qq.com", "password": "authcode", "imap_server": "imap.188.com"},
  "log_level": "DEBUG"
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.DB.Driver != DriverSQLite || cfg.DB.Path != "work/emails.db" {
		t.Errorf("DB = %+v", cfg.DB)
	}
	if cfg.Email.Address != "me@qq.com" || cfg.Email.IMAPServer != "imap.188.com" {
		t.Errorf("Email = %+v", cfg.Email)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	// Fields absent from the file keep their defaults.
	if cfg.APIPort != DefaultAPIPort {
		t.Errorf("APIPort = %q, want default %q", cfg.APIPort, DefaultAPIPort)
	}
}

func TestLoadFrom_FirstReadableFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "config.json")
	second := filepath.Join(dir, "fallback.json")
	if err := os.WriteFile(first, []byte(`{"log_level": "WARN"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte(`{"log_level": "ERROR"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(first, second)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "WARN" {
		t.Errorf("LogLevel = %q, want first file to win", cfg.LogLevel)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"email": {"address": "file@qq.com"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("JOBMAIL_EMAIL_ADDRESS", "env@qq.com")
	t.Setenv("JOBMAIL_DB_DRIVER", "sqlite")
	t.Setenv("JOBMAIL_API_PORT", "4000")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Email.Address != "env@qq.com" {
		t.Errorf("Address = %q, want env override", cfg.Email.Address)
	}
	if cfg.DB.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want env override", cfg.DB.Driver)
	}
	if cfg.APIPort != "4000" {
		t.Errorf("APIPort = %q, want env override", cfg.APIPort)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := &Config{
		DB:       DBConfig{Driver: DriverSQLite, Path: "data/x.db"},
		Email:    EmailConfig{Address: "me@qq.com", IMAPServer: "imap.qq.com"},
		LogLevel: "INFO",
		APIPort:  "3001",
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.DB.Path != "data/x.db" || loaded.Email.Address != "me@qq.com" {
		t.Errorf("reloaded config = %+v", loaded)
	}
}
