package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ILogger is the structured logger handed through the service layers. Every
// entry names the emitting module plus free-form details.
type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type ZapLogger struct {
	logger *zap.Logger
}

// fileCore is the JSON file side shared by both constructors: rotation by
// size with a month of compressed backups.
func fileCore(logFilePath string) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(newEncoderConfig()),
		zapcore.AddSync(rotator),
		zap.InfoLevel,
	)
}

// NewZapLogger writes JSON to a rotated file and mirrors entries to stdout.
// Production keeps the console side JSON for log shippers; development
// switches it to the readable console encoder.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	var consoleEncoder zapcore.Encoder
	if isProd {
		consoleEncoder = zapcore.NewJSONEncoder(newEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), zap.DebugLevel)

	core := zapcore.NewTee(fileCore(logFilePath), consoleCore)
	return &ZapLogger{logger: newCallerAware(core)}
}

// NewIsolatedLogger writes ONLY to the file, never the console. Noisy domain
// logs (agent runs, trace relays) stay out of the main log this way.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	return &ZapLogger{logger: newCallerAware(fileCore(logFilePath))}
}

// newCallerAware skips two frames so the caller field points at the code
// using the wrapper, not the level method or the write funnel.
func newCallerAware(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

func newEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// write funnels every level through one place so the field shape stays
// uniform. Errors carried in details are surfaced as their own field for
// alerting queries.
func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	fields := []zap.Field{zap.String("module", module), zap.Any("details", details)}
	if err, ok := details["error"]; ok && level >= zapcore.ErrorLevel {
		fields = append(fields, zap.Any("error_ref", err))
	}
	if ce := l.logger.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.write(zapcore.DebugLevel, module, message, details)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.write(zapcore.InfoLevel, module, message, details)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.write(zapcore.WarnLevel, module, message, details)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	l.write(zapcore.ErrorLevel, module, message, details)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
