package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_FileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := New(Options{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("config resolved", "mode", "test")
	zap.S().Infow("via global")
	_ = log.Sync()

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "config resolved") {
		t.Fatalf("log file missing entry: %s", b)
	}
	if !strings.Contains(string(b), "via global") {
		t.Fatal("logger was not installed globally")
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log == nil {
		t.Fatal("nil logger")
	}
}
