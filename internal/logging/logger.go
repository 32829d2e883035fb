package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// Init configures the shared logger. Production gets JSON lines, everything
// else gets the text formatter. LOG_LEVEL picks the level (default info).
func Init() {
	Logger.SetOutput(os.Stdout)

	if os.Getenv("APP_ENV") == "production" {
		Logger.SetReportCaller(true)
		Logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
			},
		})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	Logger.SetLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLevel maps LOG_LEVEL values onto logrus levels.
func ParseLevel(s string) logrus.Level {
	switch s {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// For returns an entry tagged with the module name.
func For(module string) *logrus.Entry {
	return Logger.WithField("module", module)
}
