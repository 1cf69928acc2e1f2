// Package logger provides the shared zap sugared logger for feedback-desk.
// Level and output format are driven by LOG_LEVEL and SERVER_ENVIRONMENT, and a few
// helpers mask personal data (submitter emails, connection strings) before it
// reaches the logs.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// IsTest should be set to true by tests so the logger writes plain development
// output to stdout and Close skips syncing.
var IsTest bool

func initLoggerInternal() {
	var zapLogger *zap.Logger
	var err error

	levelStr := os.Getenv("LOG_LEVEL")
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = zapcore.InfoLevel
	}

	switch {
	case IsTest:
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stdout"}
		zapLogger, err = config.Build()
	case isProduction():
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		zapLogger, err = cfg.Build()
	default:
		devCfg := zap.NewDevelopmentConfig()
		devCfg.Level = zap.NewAtomicLevelAt(level)
		zapLogger, err = devCfg.Build()
	}

	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	logger = zapLogger.Sugar()
}

func isProduction() bool {
	return os.Getenv("SERVER_ENVIRONMENT") == "production"
}

// InitLogger initializes the global logger exactly once.
func InitLogger() {
	once.Do(initLoggerInternal)
}

// GetLogger returns the shared logger, initializing it on first use.
func GetLogger() *zap.SugaredLogger {
	once.Do(initLoggerInternal)
	return logger
}

// UseLogger replaces the global logger. The console uses it to route logs away
// from the terminal it draws on.
func UseLogger(l *zap.SugaredLogger) {
	once.Do(func() {})
	logger = l
}

// Close flushes buffered log entries. Call it before the process exits.
func Close() error {
	if logger != nil && !IsTest {
		err := logger.Sync()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error syncing logger: %v\n", err)
		}
		return err
	}
	return nil
}

// MaskSensitiveString keeps the first prefixLen and last suffixLen characters
// of s and replaces the middle with "...".
func MaskSensitiveString(s string, prefixLen, suffixLen int) string {
	if s == "" {
		return ""
	}

	// Short strings are fully masked so their length is not revealed.
	if len(s) < (prefixLen + suffixLen + 3) {
		return strings.Repeat("*", len(s))
	}

	return s[:prefixLen] + "..." + s[len(s)-suffixLen:]
}

// MaskEmail masks the local part of an email address and keeps the domain.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return MaskSensitiveString(email, 2, 2)
	}

	return MaskSensitiveString(parts[0], 2, 1) + "@" + parts[1]
}

// MaskConnectionString hides the password in URL style and key=value style
// database connection strings. Best effort only.
func MaskConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	masked := connStr

	if idx := strings.Index(masked, "://"); idx != -1 {
		if credIdx := strings.Index(masked[idx+3:], "@"); credIdx != -1 {
			userInfo := masked[idx+3 : idx+3+credIdx]
			if passIdx := strings.Index(userInfo, ":"); passIdx != -1 {
				user := userInfo[:passIdx]
				masked = strings.Replace(masked, userInfo, user+":***", 1)
			}
		}
	}

	if kvIdx := strings.Index(masked, "password="); kvIdx != -1 {
		valueStart := kvIdx + len("password=")
		endIdx := strings.Index(masked[valueStart:], " ")
		if endIdx == -1 {
			masked = masked[:valueStart] + "***"
		} else {
			masked = masked[:valueStart] + "***" + masked[valueStart+endIdx:]
		}
	}

	return masked
}
