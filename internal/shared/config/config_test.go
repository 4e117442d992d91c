package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("PDF_STORE", "")

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %q", cfg.Port)
	}
	if cfg.LLMModel != "gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %q", cfg.LLMModel)
	}
	if cfg.LLMMaxTokens != 500 {
		t.Fatalf("expected max tokens 500, got %d", cfg.LLMMaxTokens)
	}
	if cfg.LLMTemperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", cfg.LLMTemperature)
	}
	if cfg.MaxUploadBytes != 50<<20 {
		t.Fatalf("expected 50MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.PDFStoreType != "memory" {
		t.Fatalf("expected memory pdf store, got %q", cfg.PDFStoreType)
	}
	if cfg.ExtractTimeout != 30*time.Second {
		t.Fatalf("expected 30s extract timeout, got %s", cfg.ExtractTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("PDF_STORE", "Redis")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("PDF_STORE_TTL", "2h")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.PDFStoreType != "redis" {
		t.Fatalf("expected redis, got %q", cfg.PDFStoreType)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.PDFStoreTTL != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", cfg.PDFStoreTTL)
	}
}

func TestIsDevLike(t *testing.T) {
	for _, env := range []string{"dev", "local", "test", " DEV "} {
		if !IsDevLike(env) {
			t.Fatalf("expected %q to be dev-like", env)
		}
	}
	if IsDevLike("production") {
		t.Fatalf("production must not be dev-like")
	}
}

func TestLoadAllowsZeroTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0")

	cfg := Load()

	if cfg.LLMTemperature != 0 {
		t.Fatalf("expected temperature 0, got %v", cfg.LLMTemperature)
	}
}

func TestLoadProductionWithoutDatabaseDefersToBootstrap(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MONGO_URI", "")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected env production, got %q", cfg.Env)
	}
	if cfg.DatabaseURL != "" || cfg.MongoURI != "" {
		t.Fatalf("expected no database settings, got %q %q", cfg.DatabaseURL, cfg.MongoURI)
	}
}
