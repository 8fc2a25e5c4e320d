// Package trace turns wrapper protocol events into structured logs.
package trace

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dynkit/retype/internal/object"
)

// SlogHook logs every protocol event through an injected handler.
//
// Usage:
//
//	// Human-readable output
//	hook := trace.NewSlogHook(trace.NewConsoleHandler(os.Stderr, slog.LevelDebug))
//	rt := object.NewRuntime(object.WithHook(hook))
//
//	// Structured JSON logging (compact, machine-readable)
//	hook := trace.NewSlogHook(slog.NewJSONHandler(os.Stderr, nil))
//
// Routine events log at DEBUG, successful upgrades at INFO, and failed
// upgrades or migrations at WARN and above.
type SlogHook struct {
	logger *slog.Logger
}

// NewSlogHook creates a hook that logs through logHandler. A nil
// handler falls back to the default slog handler.
func NewSlogHook(logHandler slog.Handler) *SlogHook {
	if logHandler == nil {
		logHandler = slog.Default().Handler()
	}
	return &SlogHook{logger: slog.New(logHandler)}
}

// OnCapture logs an attached construction record.
func (h *SlogHook) OnCapture(ev object.CaptureEvent) {
	h.logger.Debug("Construction Captured",
		"class", ev.Class,
		"instance", ev.Instance,
		"args", ev.Args,
		"kwargs", ev.Kwargs)
}

// OnInvoke logs a wrapped call, at ERROR level when it failed.
func (h *SlogHook) OnInvoke(ev object.InvokeEvent) {
	if ev.Err != nil {
		h.logger.Error("Wrapped Call Failed",
			"kind", string(ev.Wrapper),
			"method", ev.Name,
			"class", ev.Class,
			"duration", ev.Duration,
			"error", ev.Err)
		return
	}
	h.logger.Debug("Wrapped Call",
		"kind", string(ev.Wrapper),
		"method", ev.Name,
		"class", ev.Class,
		"duration", ev.Duration)
}

// OnUpgrade logs a rebuilt result, at ERROR level when the rebuild
// failed.
func (h *SlogHook) OnUpgrade(ev object.UpgradeEvent) {
	if ev.Outcome == object.OutcomeFailed {
		h.logger.Error("Upgrade Failed",
			"method", ev.Method,
			"from", ev.From,
			"to", ev.To,
			"declared", ev.Declared,
			"duration", ev.Duration,
			"error", ev.Err)
		return
	}
	h.logger.Info("Result Upgraded",
		"method", ev.Method,
		"from", ev.From,
		"to", ev.To,
		"declared", ev.Declared,
		"duration", ev.Duration)
}

// OnMigrate logs one attribute transfer.
func (h *SlogHook) OnMigrate(ev object.MigrateEvent) {
	switch ev.Outcome {
	case object.OutcomeFailed:
		h.logger.Warn("Attribute Migration Failed",
			"attr", ev.Attr,
			"from", ev.From,
			"to", ev.To,
			"error", ev.Err)
	case object.OutcomeSkipped:
		h.logger.Debug("Attribute Skipped",
			"attr", ev.Attr,
			"from", ev.From,
			"to", ev.To,
			"error", ev.Err)
	default:
		h.logger.Debug("Attribute Copied",
			"attr", ev.Attr,
			"from", ev.From,
			"to", ev.To)
	}
}

// ConsoleHandler is a slog.Handler that formats protocol events for
// human readability, one short line per event.
type ConsoleHandler struct {
	writer io.Writer
	level  slog.Level
}

// NewConsoleHandler creates a new console log handler.
func NewConsoleHandler(writer io.Writer, level slog.Level) *ConsoleHandler {
	return &ConsoleHandler{
		writer: writer,
		level:  level,
	}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ConsoleHandler) Handle(ctx context.Context, record slog.Record) error {
	switch record.Message {
	case "Result Upgraded":
		return h.handleUpgrade(record, "")
	case "Upgrade Failed":
		return h.handleUpgrade(record, "FAILED: ")
	}

	// Default formatting for other messages
	if _, err := fmt.Fprintf(h.writer, "[%s] %s\n", record.Level, record.Message); err != nil {
		return err
	}
	var writeErr error
	record.Attrs(func(a slog.Attr) bool {
		if _, err := fmt.Fprintf(h.writer, "  %s: %v\n", a.Key, a.Value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	return writeErr
}

func (h *ConsoleHandler) handleUpgrade(record slog.Record, prefix string) error {
	var method, from, to, errMsg string

	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "method":
			method = a.Value.String()
		case "from":
			from = a.Value.String()
		case "to":
			to = a.Value.String()
		case "error":
			errMsg = a.Value.String()
		}
		return true
	})

	if prefix != "" {
		_, err := fmt.Fprintf(h.writer, "[%s] %supgrade %s => %s via %s: %s\n",
			record.Level, prefix, from, to, method, errMsg)
		return err
	}
	_, err := fmt.Fprintf(h.writer, "[%s] upgraded %s => %s via %s\n",
		record.Level, from, to, method)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return h
}
