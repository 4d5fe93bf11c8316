package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.App.ServiceName != "reviews" {
		t.Fatalf("expected service name reviews, got %q", cfg.App.ServiceName)
	}
	if cfg.AppEnv != "development" {
		t.Fatalf("expected development env, got %q", cfg.AppEnv)
	}
	if cfg.Media.Region != "us-east-1" {
		t.Fatalf("expected default region, got %q", cfg.Media.Region)
	}
	if cfg.Production() {
		t.Fatal("development config must not report production")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/reviews")
	t.Setenv("S3_BUCKET", "covers")

	cfg := Load()
	if !cfg.Production() {
		t.Fatal("expected production")
	}
	if cfg.DatabaseURL != "postgres://localhost/reviews" {
		t.Fatalf("unexpected dsn %q", cfg.DatabaseURL)
	}
	if !cfg.Media.Enabled() {
		t.Fatal("expected media enabled when bucket set")
	}
}
