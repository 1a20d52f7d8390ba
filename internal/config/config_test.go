package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"glow/pkg/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestReadDefaults(t *testing.T) {
	cfg, err := Read(t.TempDir())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.Auth.Google.RedirectURL != "http://localhost:8080/auth/callback" {
		t.Fatalf("redirect = %q", cfg.Auth.Google.RedirectURL)
	}
	if got := Duration(cfg.Editor.AutosaveDelay, 0); got != 2*time.Second {
		t.Fatalf("autosave delay = %v", got)
	}
	if cfg.Media.Driver != "inline" {
		t.Fatalf("media driver = %q", cfg.Media.Driver)
	}
}

func TestReadFileAndEnvAliases(t *testing.T) {
	dir := t.TempDir()
	yaml := "base_url: https://thiep.example.com/\nserver:\n  env: staging\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPER_ADMIN_EMAILS", "a@example.com, b@example.com")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Read(dir)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.BaseURL != "https://thiep.example.com" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Auth.SuperAdmins) != 2 || cfg.Auth.SuperAdmins[1] != "b@example.com" {
		t.Fatalf("super admins = %v", cfg.Auth.SuperAdmins)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("GLOW_SERVER_ENV", "production")
	if _, err := Read(t.TempDir()); err == nil {
		t.Fatal("expected production with default secret to fail")
	}

	t.Setenv("JWT_SECRET", "a-long-random-secret")
	if _, err := Read(t.TempDir()); err != nil {
		t.Fatalf("Read with secret: %v", err)
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	t.Setenv("GLOW_EDITOR_AUTOSAVE_DELAY", "soon")
	if _, err := Read(t.TempDir()); err == nil {
		t.Fatal("expected invalid duration to fail")
	}
}

func TestMissingGoogleCredentialsAreNotFatal(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "your_client_id")
	if _, err := Read(t.TempDir()); err != nil {
		t.Fatalf("placeholder credentials must not abort startup: %v", err)
	}
}
