package config

import (
	"context"
	"errors"
	"os"
	"testing"
)

func TestLoad_StoresConfig(t *testing.T) {
	if _, ok := os.LookupEnv(KeyRedisPrefix); ok {
		t.Skip("REDIS_PREFIX is set in the process environment")
	}
	dir := t.TempDir()
	writeFile(t, dir, ".env.test", "REDIS_PREFIX=from-test-file\n")
	t.Setenv(KeyNodeEnv, "test")

	cfg, err := Load(context.Background(), LoadOptions{Dir: dir})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeTest || cfg.EnvFile != ".env.test" {
		t.Fatalf("mode from NODE_ENV not applied: %q/%q", cfg.Mode, cfg.EnvFile)
	}
	if cfg.Redis.Prefix != "from-test-file" {
		t.Fatalf("redis prefix = %q, want value from .env.test", cfg.Redis.Prefix)
	}
	if Get() != cfg {
		t.Fatal("Get() should return the loaded config")
	}
}

func TestLoad_ExplicitModeBeatsNodeEnv(t *testing.T) {
	t.Setenv(KeyNodeEnv, "production")
	cfg, err := Load(context.Background(), LoadOptions{Dir: t.TempDir(), Mode: ModeStaging})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeStaging {
		t.Fatalf("mode = %q, want staging", cfg.Mode)
	}
}

func TestLoad_Transform(t *testing.T) {
	t.Setenv(KeyJWTSecret, "ref")
	opts := LoadOptions{
		Dir:  t.TempDir(),
		Mode: ModeDevelopment,
		Transform: func(_ context.Context, src Source) (Source, error) {
			return src.With(KeyJWTSecret, "expanded"), nil
		},
	}
	cfg, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.JWTSecret != "expanded" {
		t.Fatalf("jwt secret = %q, want expanded", cfg.HTTP.JWTSecret)
	}
}

func TestLoad_TransformErrorKeepsPrevious(t *testing.T) {
	prev, err := Load(context.Background(), LoadOptions{Dir: t.TempDir(), Mode: ModeDevelopment})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	boom := errors.New("boom")
	_, err = Load(context.Background(), LoadOptions{
		Dir:       t.TempDir(),
		Mode:      ModeDevelopment,
		Transform: func(context.Context, Source) (Source, error) { return Source{}, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if Get() != prev {
		t.Fatal("a failed Load must not replace the stored config")
	}
}
