package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger so the rest of the application does not
// import zap directly.
type Logger struct {
	*zap.SugaredLogger
}

// Accepted values for the log.level config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	global *Logger
	once   sync.Once
)

// Get returns the process-wide logger. The first caller fixes the level;
// later calls ignore their argument. Unknown levels fall back to debug so a
// config typo surfaces everything instead of hiding it.
func Get(level string) *Logger {
	once.Do(func() {
		global = &Logger{SugaredLogger: zap.New(newCore(parseLevel(level))).Sugar()}
	})
	return global
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// newCore builds a console core on stdout. Timestamps are kept: command
// rejections and obstacle alerts are only useful with a time attached.
func newCore(level zapcore.Level) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	enc := zapcore.NewConsoleEncoder(cfg)
	out := zapcore.Lock(os.Stdout)
	return zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
}
