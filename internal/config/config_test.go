package config

import (
	"os"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q, want uploads", cfg.UploadDir)
	}
	if cfg.SMTPConfigured() {
		t.Error("SMTPConfigured() = true without SMTP settings")
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "shop")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if !cfg.SMTPConfigured() {
		t.Error("SMTPConfigured() = false with full SMTP settings")
	}
	if cfg.PublicBaseURL != "https://shop.example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
}
