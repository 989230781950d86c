package logger

import (
	"os"
	"strings"

	"school_dashboard/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// quietPaths are polled by the kiosk and monitoring every few seconds.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Init configures the global logger and stamps every entry with the running
// version so kiosk logs from different deployments can be told apart.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)
	Configure(Log, cfg.LogLevel, cfg.Environment)
	Log.ReplaceHooks(make(logrus.LevelHooks))
	Log.AddHook(NewStaticFieldsHook(logrus.Fields{"version": cfg.AppVersion}))

	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Debug("Logger configured")
}

// Configure sets level and formatter on l. Production and staging log JSON
// for the log shipper, everything else human readable text.
func Configure(l *logrus.Logger, level, environment string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// Base returns an entry without fields for components that tag themselves.
func Base() *logrus.Entry {
	return logrus.NewEntry(Log)
}

// RequestLevel picks the level of an access log line. Server errors are
// always visible, polling endpoints stay at trace.
func RequestLevel(path string, status int) logrus.Level {
	switch {
	case status >= 500:
		return logrus.ErrorLevel
	case quietPaths[path]:
		return logrus.TraceLevel
	case status >= 400:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// StaticFieldsHook adds fixed fields to entries that do not set them.
type StaticFieldsHook struct {
	fields logrus.Fields
}

func NewStaticFieldsHook(fields logrus.Fields) *StaticFieldsHook {
	return &StaticFieldsHook{fields: fields}
}

func (h *StaticFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *StaticFieldsHook) Fire(e *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
