package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/config"
)

// Setup configures the standard logrus logger and returns an entry tagged
// with the service name. Unknown levels fall back to info.
func Setup(cfg config.LoggingConfig, service string) *logrus.Entry {
	return setup(logrus.StandardLogger(), os.Stdout, cfg, service)
}

func setup(logger *logrus.Logger, out io.Writer, cfg config.LoggingConfig, service string) *logrus.Entry {
	logger.SetOutput(out)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	entry := logger.WithField("service", service)
	if err != nil && cfg.Level != "" {
		entry.WithField("level", cfg.Level).Warn("unknown log level, using info")
	}
	return entry
}
