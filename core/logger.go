package core

// Logger is any leveled logger service.
// Implementations may interpret extra args as structured context
// (e.g. an error to report, the acting user).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
