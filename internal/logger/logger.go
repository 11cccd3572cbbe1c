// Package logger provides process-wide logging for ragent.
// Verbose mode (the --verbose flag) lowers the level to debug so users can
// follow the retrieval and agent pipelines; otherwise only warnings and
// errors are written.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	base  = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(switchWriter{})),
		level,
	)).Sugar()
)

// switchWriter forwards to the current output so SetOutput also applies to
// loggers derived with With before the switch.
type switchWriter struct{}

func (switchWriter) Write(p []byte) (int, error) {
	mu.RLock()
	w := output
	mu.RUnlock()
	return w.Write(p)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
		EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + l.CapitalString() + "]")
		},
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.WarnLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	base.Debugf(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	base.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	base.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	base.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = base.Sync()
}

// Logger is a structured logger carrying key/value context.
type Logger struct {
	s *zap.SugaredLogger
}

// With returns a structured logger with the given key/value pairs attached.
// Values under secret-looking keys are redacted.
func With(keysAndValues ...any) *Logger {
	return &Logger{s: base.With(redact(keysAndValues)...)}
}

// With returns a child logger with additional key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{s: l.s.With(redact(keysAndValues)...)}
}

// Debug logs msg at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, redact(keysAndValues)...)
}

// Info logs msg at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.s.Infow(msg, redact(keysAndValues)...)
}

// Warn logs msg at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.s.Warnw(msg, redact(keysAndValues)...)
}

// Error logs msg at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.s.Errorw(msg, redact(keysAndValues)...)
}

const redacted = "[REDACTED]"

func redact(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if ok && isSecretKey(key) {
			out[i+1] = redacted
		}
	}
	return out
}

func isSecretKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "api_key", "apikey", "token", "authorization", "password", "secret":
		return true
	}
	return strings.HasSuffix(k, "_token") || strings.HasSuffix(k, "_secret")
}
