// Package logging provides structured logging for the simulation runtime.
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys carried through a tick.
type ContextKey string

const (
	// TickKey is the context key for the current tick number.
	TickKey ContextKey = "tick"
	// EntityKey is the context key for the entity a log line concerns.
	EntityKey ContextKey = "entity"
	// JobKey is the context key for the job a log line concerns.
	JobKey ContextKey = "job"
)

// Logger wraps logrus.Logger with simulation-specific context helpers.
type Logger struct {
	*logrus.Logger
	component string
}

// New creates a new Logger instance for the given component.
func New(component, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, component: component}
}

// NewFromEnv constructs a logger using LOG_LEVEL and LOG_FORMAT environment
// variables. Defaults to "info" and "json" when unset.
func NewFromEnv(component string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(component, level, format)
}

// WithContext creates a log entry enriched with tick/entity/job fields found
// in the context.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)

	if tick := ctx.Value(TickKey); tick != nil {
		entry = entry.WithField("tick", tick)
	}
	if entity := ctx.Value(EntityKey); entity != nil {
		entry = entry.WithField("entity", entity)
	}
	if job := ctx.Value(JobKey); job != nil {
		entry = entry.WithField("job", job)
	}

	return entry
}

// WithTick creates a log entry tagged with a tick number.
func (l *Logger) WithTick(tick uint64) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"component": l.component,
		"tick":      tick,
	})
}

// WithJob creates a log entry tagged with a job id.
func (l *Logger) WithJob(jobID string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"component": l.component,
		"job":       jobID,
	})
}

// WithEntity creates a log entry tagged with an entity id.
func (l *Logger) WithEntity(entity uint32) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"component": l.component,
		"entity":    entity,
	})
}

// WithTickContext returns a child context carrying the tick number for
// downstream WithContext calls.
func WithTickContext(ctx context.Context, tick uint64) context.Context {
	return context.WithValue(ctx, TickKey, tick)
}
