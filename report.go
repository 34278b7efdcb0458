package envtree

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
)

// Source tells where a resolved field got its value from.
type Source uint8

const (
	// SourceDefault means the declared default was used.
	SourceDefault Source = iota
	// SourceEnvironment means the value was read from the snapshot.
	SourceEnvironment
	// SourceMissing means no override was found and the default is null.
	SourceMissing
	// SourceSection marks a nested section.
	SourceSection
)

func (s Source) String() string {
	switch s {
	case SourceEnvironment:
		return "environment"
	case SourceDefault:
		return "default"
	case SourceMissing:
		return "missing"
	case SourceSection:
		return "section"
	}
	return "unknown"
}

// Event describes how one scalar field was resolved.
type Event struct {
	Section string // dotted path of the enclosing section, root name first
	Field   string
	Key     string // computed environment key
	Source  Source
}

// Reporter receives resolution events synchronously, in declaration order.
//
//go:generate mockgen -destination=internal/mock/reporter_mock.go -package=mock . Reporter
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

func (e Event) message() string {
	switch e.Source {
	case SourceEnvironment:
		return "value set from environment variable"
	case SourceMissing:
		return "value not set"
	}
	return "using default value"
}

type slogReporter struct {
	log *slog.Logger
}

// SlogReporter logs events with l: environment and default at info, missing
// at warn.
func SlogReporter(l *slog.Logger) Reporter {
	if l == nil {
		l = slog.Default()
	}
	return slogReporter{log: l}
}

func (r slogReporter) Report(e Event) {
	level := slog.LevelInfo
	if e.Source == SourceMissing {
		level = slog.LevelWarn
	}
	r.log.LogAttrs(context.Background(), level, e.message(),
		slog.String("section", e.Section),
		slog.String("key", e.Field),
		slog.String("env", e.Key),
		slog.String("source", e.Source.String()),
	)
}

type zerologReporter struct {
	log zerolog.Logger
}

// ZerologReporter logs events with l using the same levels as SlogReporter.
func ZerologReporter(l zerolog.Logger) Reporter {
	return zerologReporter{log: l}
}

func (r zerologReporter) Report(e Event) {
	ev := r.log.Info()
	if e.Source == SourceMissing {
		ev = r.log.Warn()
	}
	ev.Str("section", e.Section).
		Str("key", e.Field).
		Str("env", e.Key).
		Str("source", e.Source.String()).
		Msg(e.message())
}

type logrusReporter struct {
	log logrus.FieldLogger
}

// LogrusReporter logs events with l using the same levels as SlogReporter.
func LogrusReporter(l logrus.FieldLogger) Reporter {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return logrusReporter{log: l}
}

func (r logrusReporter) Report(e Event) {
	entry := r.log.WithFields(logrus.Fields{
		"section": e.Section,
		"key":     e.Field,
		"env":     e.Key,
		"source":  e.Source.String(),
	})
	if e.Source == SourceMissing {
		entry.Warn(e.message())
		return
	}
	entry.Info(e.message())
}

type nopReporter struct{}

func (nopReporter) Report(Event) {}
