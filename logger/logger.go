package logger

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

func discard(level LogLevel, msg string, keyvals ...interface{}) {}

var logFunc LogFunc = discard

// SetLogger sets the global logger function. A nil f restores the silent default.
func SetLogger(f LogFunc) {
	if f == nil {
		logFunc = discard
		return
	}
	logFunc = f
}

// Debug logs a message at debug level
func Debug(msg string, keyvals ...interface{}) {
	logFunc(DebugLevel, msg, keyvals...)
}

// Warn logs a message at warn level
func Warn(msg string, keyvals ...interface{}) {
	logFunc(WarnLevel, msg, keyvals...)
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	logFunc(ErrorLevel, msg, keyvals...)
}
