package core

/*------------------------------------------------------------------
 *
 * Purpose:	Structured developer-facing logging, forwarding every
 *		event to the host log channel described in §6.
 *
 * Description:	Generalizes the teacher's text_color_set/dw_printf pair
 *		(textcolor.go) from a hand-rolled ANSI color switch to a
 *		real leveled/structured logger (github.com/charmbracelet/log,
 *		present in the teacher's go.mod but never wired into its
 *		own Go source). Every Info/Warn/Error/Record call also
 *		reaches the host, either as a string message or a
 *		three-integer record, per §6's "Log channel" contract;
 *		Debug stays local.
 *
 *--------------------------------------------------------------*/

import (
	"io"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logger shared by all three orchestrators.
// A nil HostLink is valid: host forwarding is then skipped, useful in
// tests that don't wire up a simulated serial link.
type Logger struct {
	backend *charmlog.Logger
	host    *HostLink
}

// NewLogger builds a Logger writing human-readable structured lines to
// w and forwarding to host (which may be nil).
func NewLogger(w io.Writer, host *HostLink) *Logger {
	return &Logger{
		backend: charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Prefix:          "tbcore",
		}),
		host: host,
	}
}

// Info logs a human-readable message and forwards it to the host as a
// string-message record.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.backend.Info(msg, keyvals...)
	l.forward(msg)
}

// Warn logs a warning and forwards it to the host.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.backend.Warn(msg, keyvals...)
	l.forward(msg)
}

// Error logs an error and forwards it to the host.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.backend.Error(msg, keyvals...)
	l.forward(msg)
}

// Debug logs a developer-facing message without forwarding to the
// host; §6's log channel only ever carries operator-relevant events.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.backend.Debug(msg, keyvals...)
}

// Record forwards a three-integer record to the host (§6), e.g. block
// address / contents / CRC during a READ_BLOCK sequence, and mirrors it
// to the backend for developer visibility.
func (l *Logger) Record(label string, a, b, c int) {
	l.backend.Info(label, "a", a, "b", b, "c", c)
	if l.host != nil {
		_ = l.host.LogRecord(a, b, c)
	}
}

func (l *Logger) forward(msg string) {
	if l.host != nil {
		_ = l.host.LogString(msg)
	}
}
