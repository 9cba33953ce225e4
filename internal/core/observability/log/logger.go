package log

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

var (
	processLogger *Logger
	processOnce   sync.Once
)

// zapLevels is indexed by Level.
var zapLevels = [...]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
}

// Logger adapts a zap core to Log. Children made by With share the parent's
// level, so SetLevel on any of them affects the whole tree.
type Logger struct {
	core  *zap.Logger
	level zap.AtomicLevel
}

// New builds a JSON logger on stderr with ISO8601 timestamps. The first one
// built also becomes the process logger returned by Provide.
func New(level Level) *Logger {
	l := build(level)
	processOnce.Do(func() { processLogger = l })
	return l
}

func build(level Level) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zap())
	cfg.DisableCaller = true
	cfg.Sampling = nil
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{core: core, level: cfg.Level}
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{core: zap.NewNop(), level: zap.NewAtomicLevelAt(zapcore.ErrorLevel)}
}

// Provide returns the process logger, creating an info-level one on first use.
func Provide() *Logger {
	processOnce.Do(func() { processLogger = build(LevelInfo) })
	return processLogger
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.level.Enabled(level.zap()) {
		return
	}
	if ce := l.core.Check(level.zap(), msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.Log(LevelDebug, msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.Log(LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.Log(LevelWarn, msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.Log(LevelError, msg, fields...)
}

func (l *Logger) With(fields ...Field) Log {
	return &Logger{core: l.core.With(zapFields(fields)...), level: l.level}
}

func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zap())
}

func (l *Logger) GetLevel() Level {
	for lvl, z := range zapLevels {
		if z == l.level.Level() {
			return Level(lvl)
		}
	}
	return LevelInfo
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.core.Sync()
}

func (lvl Level) zap() zapcore.Level {
	if int(lvl) < len(zapLevels) {
		return zapLevels[lvl]
	}
	return zapcore.InfoLevel
}

func (f Field) zap() zap.Field {
	switch v := f.Value.(type) {
	case bool:
		return zap.Bool(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case float64:
		return zap.Float64(f.Key, v)
	case int:
		return zap.Int(f.Key, v)
	case int64:
		return zap.Int64(f.Key, v)
	case uint64:
		return zap.Uint64(f.Key, v)
	case string:
		return zap.String(f.Key, v)
	case error:
		return zap.NamedError(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = f.zap()
	}
	return out
}
