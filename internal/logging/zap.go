package logging

// file: internal/logging/zap.go

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a logger emits.
type Level string

// Supported levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// atomicLevel is shared by every logger built through InitLogging so SetLevel applies globally.
var (
	levelMu     sync.Mutex
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// zapLogger adapts a zap SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *zapLogger) WithContext(ctx context.Context) Logger {
	return contextLogger(ctx, l)
}

func (l *zapLogger) WithRequestID(id string) Logger {
	return &zapLogger{sugar: l.sugar.With("requestID", id)}
}

func (l *zapLogger) WithField(key string, value any) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}

var noop Logger = &zapLogger{sugar: zap.NewNop().Sugar()}

// GetNoopLogger returns a logger that discards everything.
func GetNoopLogger() Logger {
	return noop
}

// ParseLevel converts a textual level, falling back to info for unknown values.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (lvl Level) zapLevel() zapcore.Level {
	switch lvl {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewZapLogger builds a JSON logger writing to w at the given level.
func NewZapLogger(level Level, w io.Writer) Logger {
	SetLevel(level)
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), atomicLevel)
	return &zapLogger{sugar: zap.New(core).Sugar()}
}

// InitLogging installs a zap-backed default logger writing to w.
func InitLogging(level Level, w io.Writer) {
	SetDefaultLogger(NewZapLogger(level, w))
}

// SetupDefaultLogger installs the default logger on stderr.
// Stdout is left untouched because the stdio transport owns it.
func SetupDefaultLogger(level string) {
	InitLogging(ParseLevel(level), os.Stderr)
}

// SetLevel changes the level of every zap-backed logger.
func SetLevel(level Level) {
	levelMu.Lock()
	defer levelMu.Unlock()
	atomicLevel.SetLevel(level.zapLevel())
}

// IsDebugEnabled reports whether debug output is currently emitted.
func IsDebugEnabled() bool {
	return atomicLevel.Enabled(zapcore.DebugLevel)
}
