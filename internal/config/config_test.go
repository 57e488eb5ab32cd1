package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.Drafts.TTL != 24*time.Hour {
		t.Errorf("expected 24h draft TTL, got %s", cfg.Drafts.TTL)
	}
	if !reflect.DeepEqual(cfg.Meetings.ReservedIDs, []string{"about"}) {
		t.Errorf("expected reserved ids [about], got %v", cfg.Meetings.ReservedIDs)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("DRAFT_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 9090 || cfg.Drafts.TTL != 2*time.Hour {
		t.Errorf("expected overrides applied, got port=%d ttl=%s", cfg.Port, cfg.Drafts.TTL)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production")
	}
}

func TestLoad_OptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.yaml")
	body := "reserved_ids: [about, admin]\ndefault_timezone: Europe/Berlin\ndefault_earliest: 8\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEETINGS_OPTIONS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := cfg.Meetings
	if !reflect.DeepEqual(m.ReservedIDs, []string{"about", "admin"}) {
		t.Errorf("unexpected reserved ids %v", m.ReservedIDs)
	}
	if m.DefaultTimezone != "Europe/Berlin" || m.DefaultEarliest != 8 {
		t.Errorf("expected overlay applied, got %+v", m)
	}
	if m.DefaultLatest != 17 || m.IDLength != 6 {
		t.Errorf("expected unspecified fields to keep defaults, got %+v", m)
	}
}

func TestLoad_InvalidOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.yaml")
	if err := os.WriteFile(path, []byte("default_earliest: 20\ndefault_latest: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEETINGS_OPTIONS_FILE", path)

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "time range") {
		t.Errorf("expected time range error, got %v", err)
	}
}

func TestLoad_MissingOptionsFile(t *testing.T) {
	t.Setenv("MEETINGS_OPTIONS_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing options file")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", User: "u", Password: "p@ss", Name: "mb"}
	dsn := d.DSN()
	if !strings.Contains(dsn, "tcp(db:3306)/mb") {
		t.Errorf("expected default port appended, got %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("expected parseTime, got %s", dsn)
	}

	d.dsnOverride = "root@tcp(x:1)/y"
	if d.DSN() != "root@tcp(x:1)/y" {
		t.Errorf("expected DATABASE_URL override, got %s", d.DSN())
	}
}

func TestLoad_HTTPLists(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, ,192.168.0.0/16")
	t.Setenv("API_CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg.HTTP.TrustedProxies, []string{"10.0.0.0/8", "192.168.0.0/16"}) {
		t.Errorf("unexpected trusted proxies %v", cfg.HTTP.TrustedProxies)
	}
	if cfg.HTTP.CORSOrigins != nil {
		t.Errorf("expected no CORS origins, got %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("CREATE_RATE_LIMIT", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero rate limit")
	}
}
