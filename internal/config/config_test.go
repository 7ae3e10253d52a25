package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

const baseConfig = `
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  admin_secret: "test-admin-secret"
`

func TestLoadDefaultsResetHour(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, baseConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.ResetHour(); got != 10 {
		t.Fatalf("ResetHour() = %d, want default 10", got)
	}
}

func TestLoadKeepsMidnightResetHour(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, baseConfig+`
rewards:
  reset_hour: 0
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.ResetHour(); got != 0 {
		t.Fatalf("ResetHour() = %d, want explicit 0 to survive defaulting", got)
	}
}

func TestLoadRejectsOutOfRangeResetHour(t *testing.T) {
	if _, err := Load(writeTestConfig(t, baseConfig+`
rewards:
  reset_hour: 24
`)); err == nil {
		t.Fatal("Load() should reject reset_hour 24")
	}
}
