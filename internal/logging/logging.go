// Package logging builds the process-wide zap logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Gosee6432/MindCounselorHub-sub001/internal/config"
)

// New returns a logger writing to stdout.
func New(cfg config.LogConfig, loc *time.Location) *zap.Logger {
	return NewWithWriter(cfg, loc, os.Stdout)
}

// NewWithWriter returns a logger writing one entry per line to w.
// Timestamps go under "ts" as RFC3339Nano in loc.
func NewWithWriter(cfg config.LogConfig, loc *time.Location, w io.Writer) *zap.Logger {
	if loc == nil {
		loc = time.UTC
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.In(loc).Format(time.RFC3339Nano))
	}

	var encoder zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller())
}

// ParseLevel maps a level name to a zap level; unknown names mean info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
