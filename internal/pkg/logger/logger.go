package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

var (
	defaultMu    sync.RWMutex
	defaultLevel = "info"
	defaultEnv   = "development"
)

// Configure sets the level and environment used by Component.
func Configure(level, env string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLevel = level
	defaultEnv = env
}

// Component returns a logger tagged with the component name, built from the
// process-wide settings passed to Configure.
func Component(name string) Logger {
	defaultMu.RLock()
	level, env := defaultLevel, defaultEnv
	defaultMu.RUnlock()
	return New(level, env).WithField("component", name)
}

func New(level, env string) Logger {
	logger := logrus.New()

	if env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
			ForceColors:     env == "development",
		})
	}

	logger.SetLevel(parseLevel(level))
	logger.SetOutput(os.Stdout)

	return &logrusLogger{
		entry: logrus.NewEntry(logger),
	}
}

func NewWithWriter(level string, writer io.Writer) Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
	})
	logger.SetLevel(parseLevel(level))
	logger.SetOutput(writer)

	return &logrusLogger{
		entry: logrus.NewEntry(logger),
	}
}

func parseLevel(level string) logrus.Level {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return logLevel
}

func (l *logrusLogger) Debug(args ...interface{}) {
	l.entry.Debug(args...)
}

func (l *logrusLogger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...interface{}) {
	l.entry.Info(args...)
}

func (l *logrusLogger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warn(args ...interface{}) {
	l.entry.Warn(args...)
}

func (l *logrusLogger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Error(args ...interface{}) {
	l.entry.Error(args...)
}

func (l *logrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Fatal(args ...interface{}) {
	l.entry.Fatal(args...)
}

func (l *logrusLogger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

func (l *logrusLogger) WithField(key string, value interface{}) Logger {
	return &logrusLogger{
		entry: l.entry.WithField(key, value),
	}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &logrusLogger{
		entry: l.entry.WithFields(fields),
	}
}

func (l *logrusLogger) WithError(err error) Logger {
	return &logrusLogger{
		entry: l.entry.WithError(err),
	}
}

func FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}

func SetLevel(logger Logger, level string) error {
	if l, ok := logger.(*logrusLogger); ok {
		logrusLevel, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		l.entry.Logger.SetLevel(logrusLevel)
	}
	return nil
}

func IsDebugEnabled(logger Logger) bool {
	if l, ok := logger.(*logrusLogger); ok {
		return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
	}
	return false
}
