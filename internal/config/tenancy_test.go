package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestTenancyDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	holder, err := NewTenancyHolder(Config{}, zap.NewNop())
	if err != nil {
		t.Fatalf("expected defaults, got %v", err)
	}
	got := holder.Get()
	if got.DefaultStorageLimit != DefaultStorageLimit {
		t.Fatalf("expected default storage limit, got %d", got.DefaultStorageLimit)
	}
	if got.DefaultTimezone != "Europe/Stockholm" {
		t.Fatalf("expected Europe/Stockholm, got %q", got.DefaultTimezone)
	}
	if !got.IsReserved("APP") {
		t.Fatalf("expected app to be reserved")
	}
	if got.IsReserved("bjorken") {
		t.Fatalf("expected bjorken to be free")
	}
}

func TestTenancyReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fornet.yml")
	body := []byte(`tenancy:
  reservedSubdomains: ["app", "support"]
  defaultStorageLimit: 2048
  defaultTimezone: Europe/Helsinki
  adminLandingPath: /dashboard
  loginPath: /login
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	holder, err := NewTenancyHolder(Config{TenancyConfigPath: path}, zap.NewNop())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	got := holder.Get()
	if got.DefaultStorageLimit != 2048 {
		t.Fatalf("expected 2048, got %d", got.DefaultStorageLimit)
	}
	if !got.IsReserved("support") {
		t.Fatalf("expected support to be reserved")
	}
	if got.DefaultTimezone != "Europe/Helsinki" {
		t.Fatalf("expected Europe/Helsinki, got %q", got.DefaultTimezone)
	}
}

func TestTenancyRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fornet.yml")
	body := []byte("tenancy:\n  defaultStorageLimit: -1\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewTenancyHolder(Config{TenancyConfigPath: path}, zap.NewNop()); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestAdminHost(t *testing.T) {
	cfg := Config{RootDomain: normalizeDomain("https://Fornet.se:443/"), AdminSubdomain: "app"}
	if got := cfg.AdminHost(); got != "app.fornet.se" {
		t.Fatalf("expected app.fornet.se, got %q", got)
	}
}
