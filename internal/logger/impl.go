package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/go-utils/helpers"
	goulog "github.com/julianstephens/go-utils/logger"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// ConsoleLogger writes key=value formatted logs to stdout, errors to stderr.
type ConsoleLogger struct {
	out *logrus.Logger
	err *logrus.Logger
}

// NewConsoleLogger creates a logger that writes to console (stdout/stderr).
// level can be "debug", "info", "warn", or "error"; anything else falls back to info.
func NewConsoleLogger(level string) Logger {
	return newConsoleLogger(level, os.Stdout, os.Stderr)
}

func newConsoleLogger(level string, out, errOut io.Writer) *ConsoleLogger {
	lvl, err := logrus.ParseLevel(level)
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	return &ConsoleLogger{
		out: newLogrus(out, lvl),
		// errors are logged regardless of the configured level
		err: newLogrus(errOut, logrus.ErrorLevel),
	}
}

func newLogrus(w io.Writer, lvl logrus.Level) *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(w)
	lg.SetLevel(lvl)
	lg.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})
	return lg
}

// Level reports the minimum level written to stdout.
func (cl *ConsoleLogger) Level() string {
	return cl.out.GetLevel().String()
}

func (cl *ConsoleLogger) Debug(msg string, fields ...interface{}) {
	cl.out.WithFields(fieldsToMap(fields)).Debug(msg)
}

func (cl *ConsoleLogger) Info(msg string, fields ...interface{}) {
	cl.out.WithFields(fieldsToMap(fields)).Info(msg)
}

func (cl *ConsoleLogger) Warn(msg string, fields ...interface{}) {
	cl.out.WithFields(fieldsToMap(fields)).Warn(msg)
}

func (cl *ConsoleLogger) Error(msg string, err error, fields ...interface{}) {
	cl.err.WithFields(fieldsToMap(fields)).WithError(err).Error(msg)
}

// FileLogger wraps go-utils/logger with rotating file output.
type FileLogger struct {
	underlying *goulog.Logger
	filePath   string
}

// NewFileLogger creates a logger that writes to a rotating file using go-utils/logger.
//
// Parameters:
//   - logDir: Directory where log files will be stored (created if missing)
//   - logFileName: Name of the log file (e.g., "walog.log")
//   - maxFileSizeMB: Maximum size per log file in MB before rotation
//   - maxBackups: Maximum number of backup log files to retain
func NewFileLogger(logDir string, logFileName string, maxFileSizeMB int, maxBackups int) (Logger, error) {
	if err := helpers.Ensure(logDir, true); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, logDir)
	}

	logPath := filepath.Join(logDir, logFileName)

	maxAge := 28
	underlying := goulog.New()
	if err := underlying.SetFileOutputWithConfig(goulog.FileRotationConfig{
		Filename:   logPath,
		MaxSize:    maxFileSizeMB,
		MaxBackups: &maxBackups,
		MaxAge:     &maxAge,
		Compress:   true,
	}); err != nil {
		return nil, wrapLoggerErr("create file logger", ErrLogCreate, err, logDir)
	}

	return &FileLogger{
		underlying: underlying,
		filePath:   logPath,
	}, nil
}

// Path returns the active log file path.
func (fl *FileLogger) Path() string { return fl.filePath }

func (fl *FileLogger) Debug(msg string, fields ...interface{}) {
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Debug(msg)
	} else {
		fl.underlying.Debug(msg)
	}
}

func (fl *FileLogger) Info(msg string, fields ...interface{}) {
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Info(msg)
	} else {
		fl.underlying.Info(msg)
	}
}

func (fl *FileLogger) Warn(msg string, fields ...interface{}) {
	if len(fields) > 0 {
		fl.underlying.WithFields(fieldsToMap(fields)).Warn(msg)
	} else {
		fl.underlying.Warn(msg)
	}
}

func (fl *FileLogger) Error(msg string, err error, fields ...interface{}) {
	allFields := append([]interface{}{"error", err}, fields...)
	fl.underlying.WithFields(fieldsToMap(allFields)).Error(msg)
}

// Close is a no-op: go-utils/logger flushes on every write.
func (fl *FileLogger) Close() error {
	return nil
}

// fieldsToMap converts key/value pairs to a map. A trailing key without value is dropped.
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		result[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}
	return result
}

// MultiLogger writes to multiple outputs simultaneously.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines multiple loggers into a single logger.
func NewMultiLogger(loggers ...Logger) Logger {
	return &MultiLogger{
		loggers: loggers,
	}
}

func (ml *MultiLogger) Debug(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Debug(msg, fields...)
	}
}

func (ml *MultiLogger) Info(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Info(msg, fields...)
	}
}

func (ml *MultiLogger) Warn(msg string, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Warn(msg, fields...)
	}
}

func (ml *MultiLogger) Error(msg string, err error, fields ...interface{}) {
	for _, lg := range ml.loggers {
		lg.Error(msg, err, fields...)
	}
}

// Close closes every Closeable logger and returns the first error.
func (ml *MultiLogger) Close() error {
	var firstErr error
	for _, lg := range ml.loggers {
		if c, ok := lg.(Closeable); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = wrapLoggerErr("close multi logger", ErrLogClose, err, "")
			}
		}
	}
	return firstErr
}

// namedLogger prefixes every entry with a component field.
type namedLogger struct {
	inner     Logger
	component string
}

// Named returns a logger that tags every entry with component=<name>.
func Named(lg Logger, component string) Logger {
	if n, ok := lg.(*namedLogger); ok {
		return &namedLogger{inner: n.inner, component: n.component + "." + component}
	}
	return &namedLogger{inner: OrNoOp(lg), component: component}
}

func (nl *namedLogger) with(fields []interface{}) []interface{} {
	return append([]interface{}{"component", nl.component}, fields...)
}

func (nl *namedLogger) Debug(msg string, fields ...interface{}) { nl.inner.Debug(msg, nl.with(fields)...) }
func (nl *namedLogger) Info(msg string, fields ...interface{})  { nl.inner.Info(msg, nl.with(fields)...) }
func (nl *namedLogger) Warn(msg string, fields ...interface{})  { nl.inner.Warn(msg, nl.with(fields)...) }
func (nl *namedLogger) Error(msg string, err error, fields ...interface{}) {
	nl.inner.Error(msg, err, nl.with(fields)...)
}
