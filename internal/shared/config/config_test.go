package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"PORT", "ENV", "OBJECT_STORE", "QUEUE_BACKEND", "JOBS_MAX_RESULTS", "JOBS_CACHE_TTL", "CLUSTER_SEED"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "dev" || cfg.ObjectStoreType != "local" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.QueueBackend != "" {
		t.Fatalf("queue backend = %q", cfg.QueueBackend)
	}
	if cfg.JobsMaxResults != 50 || cfg.JobsCacheTTL != time.Hour || cfg.AdzunaCountry != "in" {
		t.Fatalf("unexpected job defaults: %+v", cfg)
	}
	if cfg.SkillMatchMode != "substring" || cfg.ClusterSeed != 0 {
		t.Fatalf("unexpected skill defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("QUEUE_BACKEND", "rabbitmq")
	t.Setenv("JOBS_PARALLEL_PAGES", "true")
	t.Setenv("JOBS_TIMEOUT", "5s")
	t.Setenv("CLUSTER_SEED", "42")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	if cfg.Env != "production" || cfg.ObjectStoreType != "s3" || cfg.QueueBackend != "amqp" {
		t.Fatalf("unexpected normalisation: %+v", cfg)
	}
	if !cfg.JobsParallel || cfg.JobsTimeout != 5*time.Second || cfg.ClusterSeed != 42 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSAllowOrigin)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JOBS_MAX_RESULTS", "lots")
	t.Setenv("JOBS_PARALLEL_PAGES", "maybe")
	t.Setenv("JOBS_CACHE_TTL", "forever")
	t.Setenv("CLUSTER_SEED", "-3")

	cfg := Load()
	if cfg.JobsMaxResults != 50 || cfg.JobsParallel || cfg.JobsCacheTTL != time.Hour || cfg.ClusterSeed != 0 {
		t.Fatalf("expected fallbacks, got %+v", cfg)
	}
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9999\nADZUNA_APP_ID=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("ADZUNA_APP_ID", "")
	os.Unsetenv("ADZUNA_APP_ID")

	cfg := Load()
	if cfg.Port != "7000" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.AdzunaAppID != "from-file" {
		t.Fatalf("app id = %q", cfg.AdzunaAppID)
	}
}

func TestPoolOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	over := Load().PoolOverrides()
	if over.MaxOpenConns != 7 || over.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("overrides = %+v", over)
	}
	if over.PingTimeout != 0 || over.MaxIdleConns != 0 {
		t.Fatalf("unset or invalid keys should stay zero: %+v", over)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}
