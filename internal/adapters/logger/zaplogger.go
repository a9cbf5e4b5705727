package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotated log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger implements ports.Logger on top of zap, emitting JSON lines.
type ZapLogger struct {
	z      *zap.Logger
	closer io.Closer
}

// NewFileLogger builds a ZapLogger writing to a lumberjack-rotated file.
func NewFileLogger(level LogLevel, fc FileConfig) *ZapLogger {
	rotator := &lumberjack.Logger{
		Filename:   fc.Path,
		MaxSize:    fc.MaxSizeMB,
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAgeDays,
		Compress:   true,
	}
	l := NewZapLogger(zapcore.AddSync(rotator), level)
	l.closer = rotator
	return l
}

// NewZapLogger builds a ZapLogger writing JSON to ws.
func NewZapLogger(ws zapcore.WriteSyncer, level LogLevel) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zapLevel(level))
	return &ZapLogger{z: zap.New(core)}
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
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

func toZapFields(fields []map[string]interface{}) []zap.Field {
	kv := flattenFields(fields)
	if kv == nil {
		return nil
	}
	out := make([]zap.Field, 0, len(kv))
	for _, f := range kv {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

// Debug logs a message at Debug level.
func (l *ZapLogger) Debug(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.z.Debug(msg, toZapFields(fields)...)
}

// Info logs a message at Info level.
func (l *ZapLogger) Info(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.z.Info(msg, toZapFields(fields)...)
}

// Warn logs a message at Warning level.
func (l *ZapLogger) Warn(_ context.Context, msg string, fields ...map[string]interface{}) {
	l.z.Warn(msg, toZapFields(fields)...)
}

// Error logs msg at Error level with err under the "error" key.
func (l *ZapLogger) Error(_ context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.z.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

// Close flushes buffered entries and releases the log file, if any.
func (l *ZapLogger) Close() error {
	_ = l.z.Sync()
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
