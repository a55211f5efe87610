// Package logger defines the logging contract the chart engine and its
// collaborators write to. Adapters for concrete backends live in the
// subpackages; the engine itself defaults to a no-op logger so it stays
// silent when embedded.
package logger

type Level int8

const (
	Disabled   Level = -1 // Disabled turns logging off entirely.
	TraceLevel Level = iota
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
	PanicLevel
	NoLevel
)

// Logger is the leveled, field-decorated logging surface the engine
// calls. Feeds and the web view log connection churn at info/warn;
// the engine itself only logs dropped updates and registration errors.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	SetLevel(level Level)
	GetLevel() Level
}
