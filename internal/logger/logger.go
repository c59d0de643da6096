package logger

// Logger is the structured logger every walog package takes. Fields are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	// Error logs err under the "error" key ahead of fields.
	Error(msg string, err error, fields ...interface{})
}

// Closeable is implemented by loggers that hold an open output.
type Closeable interface {
	Close() error
}

// NoOpLogger drops everything. Components given a nil Logger use it.
type NoOpLogger struct{}

func (NoOpLogger) Debug(string, ...interface{})        {}
func (NoOpLogger) Info(string, ...interface{})         {}
func (NoOpLogger) Warn(string, ...interface{})         {}
func (NoOpLogger) Error(string, error, ...interface{}) {}

var _ Logger = NoOpLogger{}

func OrNoOp(lg Logger) Logger {
	if lg == nil {
		return NoOpLogger{}
	}
	return lg
}
