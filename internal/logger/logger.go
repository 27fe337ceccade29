// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack).
//
// Context
// -------
// Binaries that resolve configuration write lifecycle events as JSON to one
// file per day under `<dir>/YYYY-MM-DD.log` and, when stdout is a TTY, tee
// the same events to the console.  With no directory the console core is
// the only sink, which keeps one-shot operator commands from leaving log
// files behind.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: "logs", Tee: logger.InTTY()})
//	if err != nil { … }
//	log.Infow("config resolved", "mode", cfg.Mode)
//
// Notes
// -----
// • ISO-8601 timestamps and lowercase levels.
// • The logger is installed globally so `zap.S()` in library code reaches it.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects sinks and verbosity.
type Options struct {
	Dir   string        // JSON file sink directory; "" disables it
	Tee   bool          // also write to stdout
	Level zapcore.Level // minimum level, Info by default
}

// New builds the logger described by opts and installs it via
// zap.ReplaceGlobals.
func New(opts Options) (*zap.SugaredLogger, error) {
	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores   []zapcore.Core
		errSink zapcore.WriteSyncer = zapcore.AddSync(os.Stderr)
	)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encCfg),
			zapcore.AddSync(fileSink),
			opts.Level,
		))
		errSink = zapcore.AddSync(fileSink)
	}

	if opts.Tee || opts.Dir == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			opts.Level,
		))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(errSink)).Sugar()
	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "dir", opts.Dir, "tee", opts.Tee)
	return z, nil
}

// InTTY reports whether stdout is a character device.
func InTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
