// Package logger owns the process-wide log sink. Engine components take a
// prefixed child through Component and never touch the sink directly.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/tendwell/internal/constants"
)

// Rotation limits for the log file: size in megabytes, age in days.
const (
	rotateSizeMB  = 10
	rotateKeep    = 3
	rotateAgeDays = 28
)

// Logger is nil until Init runs. The package helpers drop messages while it
// is nil.
var Logger *log.Logger

// Config selects where logs go. Debug also enables caller reporting.
type Config struct {
	Debug     bool
	ConfigDir string
}

// Init creates <ConfigDir>/logs and points Logger at a rotated file there.
func Init(cfg Config) error {
	dir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	sink := sinkFor(cfg.Debug, &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.AppName+".log"),
		MaxSize:    rotateSizeMB,
		MaxBackups: rotateKeep,
		MaxAge:     rotateAgeDays,
		Compress:   true,
	})

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	Logger = log.NewWithOptions(sink, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	return nil
}

// sinkFor keeps the terminal clean for normal runs. Debug runs mirror the file
// to stderr.
func sinkFor(debug bool, file io.Writer) io.Writer {
	if !debug {
		return file
	}
	return io.MultiWriter(os.Stderr, file)
}

// Component returns a logger scoped to one engine component. Before Init it
// returns a logger that discards everything so that library code and tests can
// log unconditionally.
func Component(name string) *log.Logger {
	if Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{Prefix: name})
	}
	return Logger.WithPrefix(constants.AppName + "/" + name)
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error also records the failure behind a fatal exit.
func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
