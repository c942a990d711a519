package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where log entries go
type Options struct {
	// Dir receives a JSON log file per run at Debug level. Empty disables it.
	Dir string

	// JSON switches the console output from coloured text to JSON lines
	JSON bool

	// ConsoleLevel is the minimum level written to stdout
	ConsoleLevel zapcore.Level
}

// InitLogger initializes a zap logger with console and file outputs
// env is used to prefix the log file name
func InitLogger(env string) (*zap.Logger, error) {
	return New(env, Options{Dir: "logs", ConsoleLevel: zapcore.InfoLevel})
}

// InitServerLogger writes JSON lines to stdout only, for hosts that collect
// container output and offer no persistent disk
func InitServerLogger(env string) (*zap.Logger, error) {
	logger, err := New(env, Options{JSON: true, ConsoleLevel: zapcore.InfoLevel})
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("env", env)), nil
}

// New builds a logger from the given options
func New(env string, opts Options) (*zap.Logger, error) {
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(opts.JSON), zapcore.AddSync(os.Stdout), opts.ConsoleLevel),
	}

	if opts.Dir != "" {
		logFile, err := openLogFile(opts.Dir, env)
		if err != nil {
			return nil, err
		}

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.TimeKey = "timestamp"
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, nil
}

func consoleEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// openLogFile creates <dir>/<env>_<timestamp>.log
func openLogFile(dir, env string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(dir, fmt.Sprintf("%s_%s.log", env, timestamp))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logFile, nil
}
