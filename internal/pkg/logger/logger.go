package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how the application logger is built.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Development enables caller annotation and colored console levels.
	Development bool
}

// New builds the application-wide zap logger.
func New(config Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(config.Level) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"

	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	logger := zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel))

	if config.Development {
		logger = logger.WithOptions(zap.AddCaller())
	}

	return logger, nil
}

// Default builds a production JSON logger at info level.
func Default() *zap.Logger {
	logger, err := New(Config{Level: "info", Format: "json"})
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// RedactEmail masks the local part of an address so payment logs do not
// carry full customer emails: "jane@example.com" becomes "j***@example.com".
func RedactEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// Email is a convenience field constructor for redacted email addresses.
func Email(key, value string) zap.Field {
	return zap.String(key, RedactEmail(value))
}
