package errors

import (
	"github.com/sirupsen/logrus"
)

// LogHandler is a Handler that writes errors to a logrus logger.
type LogHandler struct {
	// Logger receives the entries. Nil uses the logrus standard logger.
	Logger logrus.FieldLogger
	// Verbose adds stack traces to the entries.
	Verbose bool
}

func (h *LogHandler) logger() logrus.FieldLogger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

// HandleError logs a ClockError at error level.
func (h *LogHandler) HandleError(err *ClockError) {
	if err == nil {
		return
	}
	fields := logrus.Fields{
		"op":   err.Op,
		"kind": err.Kind.String(),
	}
	if h.Verbose && err.StackTrace != "" {
		fields["stack"] = err.StackTrace
	}
	h.logger().WithFields(fields).Error(err.Err)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	entry := h.logger().WithField("kind", KindPanic.String())
	if err.Op != "" {
		entry = entry.WithField("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		entry = entry.WithField("stack", err.StackTrace)
	}
	entry.Errorf("panic: %v", err.Value)
}
