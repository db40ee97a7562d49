package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

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

func newRotator(logFilePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    20, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
}

func newJSONEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.MessageKey = "msg"
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// NewZapLogger tees a rotated JSON file with the console. Production logs
// JSON at info level on both; development logs human-readable debug output.
func NewZapLogger(logFilePath string, isProd bool) *ZapLogger {
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	consoleLevel := zap.DebugLevel
	if isProd {
		consoleEncoder = newJSONEncoder()
		consoleLevel = zap.InfoLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(newJSONEncoder(), zapcore.AddSync(newRotator(logFilePath)), zap.InfoLevel),
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel),
	)

	// Each call goes through write, so skip two frames to report the real caller.
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))

	return &ZapLogger{logger: l}
}

// NewIsolatedLogger writes to its own file only. The websocket layer uses it
// to keep socket chatter out of the main log.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	fileCore := zapcore.NewCore(
		newJSONEncoder(),
		zapcore.AddSync(newRotator(logFilePath)),
		zap.InfoLevel,
	)

	l := zap.New(fileCore, zap.AddCaller(), zap.AddCallerSkip(2))

	return &ZapLogger{logger: l}
}

// NewNopLogger discards everything. Intended for tests and tools.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
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

// write logs details as one object. Error values are flattened to their text,
// since zap would otherwise encode them as empty structs.
func (l *ZapLogger) write(level zapcore.Level, module, message string, details map[string]interface{}) {
	ce := l.logger.Check(level, message)
	if ce == nil {
		return
	}
	fields := []zap.Field{zap.String("module", module)}
	if len(details) > 0 {
		flat := make(map[string]interface{}, len(details))
		for k, v := range details {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			flat[k] = v
		}
		fields = append(fields, zap.Any("details", flat))
	}
	ce.Write(fields...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
