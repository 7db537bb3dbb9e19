// Package logger configures the process-wide logrus logger for the
// service binaries. Library packages log through the standard logrus
// entry points and inherit whatever Setup installed.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/meenmo/rateedge/config"
)

// Setup applies cfg to the standard logrus logger. Unknown levels fall
// back to info; an unknown format is an error.
func Setup(cfg config.LogConfig) error {
	lvl, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetReportCaller(true)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch cfg.Format {
	case "json", "":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: callerPrettyfier,
		})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		return fmt.Errorf("invalid log format %q", cfg.Format)
	}

	if cfg.File == "" {
		logrus.SetOutput(os.Stderr)
		return nil
	}
	logrus.SetOutput(&lumberjack.Logger{
		Filename: cfg.File,
		MaxSize:  100,
		MaxAge:   cfg.MaxAgeDays,
		Compress: true,
	})
	return nil
}
