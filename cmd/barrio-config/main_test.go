package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yanizio/barrio/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--vault=false"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// unsetenv removes key for the duration of the test so file values reach
// the resolver.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
		}
	})
}

func TestPrint_RedactsByDefault(t *testing.T) {
	dir := t.TempDir()
	body := "JWT_SECRET=from-file\nSTRIPE_API_KEY=sk_test_1\n"
	if err := os.WriteFile(filepath.Join(dir, ".env.test"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	unsetenv(t, "JWT_SECRET")
	unsetenv(t, "STRIPE_API_KEY")

	revealed, err := run(t, "print", "--dir", dir, "--mode", "test", "--reveal")
	if err != nil {
		t.Fatalf("print --reveal: %v", err)
	}
	if !strings.Contains(revealed, "sk_test_1") || !strings.Contains(revealed, "from-file") {
		t.Fatalf(".env.test values did not reach the config:\n%s", revealed)
	}

	out, err := run(t, "print", "--dir", dir, "--mode", "test")
	if err != nil {
		t.Fatalf("print: %v", err)
	}

	var doc struct {
		Mode    string `json:"mode"`
		EnvFile string `json:"env_file"`
		HTTP    struct {
			JWTSecret string `json:"jwt_secret"`
		} `json:"http"`
		Modules []struct {
			Key string `json:"key"`
		} `json:"modules"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc.Mode != "test" || doc.EnvFile != ".env.test" {
		t.Errorf("mode/env file = %q/%q", doc.Mode, doc.EnvFile)
	}
	if doc.HTTP.JWTSecret != "****" {
		t.Errorf("jwt secret = %q, want masked", doc.HTTP.JWTSecret)
	}
	if len(doc.Modules) == 0 || doc.Modules[0].Key != "payment" {
		t.Errorf("modules = %+v", doc.Modules)
	}
	if strings.Contains(out, "sk_test_1") || strings.Contains(out, "from-file") {
		t.Error("secret leaked into output")
	}
}

func TestPrint_Reveal(t *testing.T) {
	t.Setenv("JWT_SECRET", "visible")
	out, err := run(t, "print", "--dir", t.TempDir(), "--mode", "development", "--reveal")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, `"visible"`) {
		t.Fatalf("--reveal should print secrets:\n%s", out)
	}
}

func TestCheck_ProductionDefaultsFail(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("COOKIE_SECRET", "")

	out, err := run(t, "check", "--dir", t.TempDir(), "--mode", "production")
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("err = %v, want errCheckFailed", err)
	}
	if !strings.Contains(out, "error JWT_SECRET") {
		t.Fatalf("findings not printed:\n%s", out)
	}
}

func TestCheck_DevelopmentPasses(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "STORE_CORS", "ADMIN_CORS", "AUTH_CORS"} {
		t.Setenv(k, "")
	}
	out, err := run(t, "check", "--dir", t.TempDir(), "--mode", "development")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok: mode=development") {
		t.Fatalf("summary missing:\n%s", out)
	}

	if _, err := run(t, "check", "--dir", t.TempDir(), "--mode", "development", "--strict"); !errors.Is(err, errCheckFailed) {
		t.Fatalf("--strict should fail on warnings, err = %v", err)
	}
}

func TestProbeDatabase_SilentServerTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			c.Close()
		}
	})

	cfg, err := config.Resolve(config.ModeDevelopment, config.NewSource(map[string]string{
		config.KeyDatabaseURL: "postgres://shop@" + ln.Addr().String() + "/shop",
	}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = probeDatabase(ctx, cfg)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("probe took %v, deadline was ignored", elapsed)
	}
}
