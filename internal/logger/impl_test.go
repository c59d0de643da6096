package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"
)

func TestConsoleLogger_InfoLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("info", buf, buf)

	cl.Info("test message", "key", "value")

	output := buf.String()
	tst.AssertTrue(t, strings.Contains(output, "level=info"), "expected info level in output")
	tst.AssertTrue(t, strings.Contains(output, "test message"), "expected message in output")
	tst.AssertTrue(t, strings.Contains(output, "key=value"), "expected fields in output")
}

func TestConsoleLogger_DebugHiddenAtInfoLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("info", buf, buf)

	cl.Debug("debug message", "key", "value")

	tst.AssertTrue(t, buf.Len() == 0, "expected no output at info level for debug")
}

func TestConsoleLogger_DebugVisibleAtDebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("debug", buf, buf)

	cl.Debug("debug message", "key", "value")

	output := buf.String()
	tst.AssertTrue(t, strings.Contains(output, "level=debug"), "expected debug level in output")
	tst.AssertTrue(t, strings.Contains(output, "debug message"), "expected message in output")
}

func TestConsoleLogger_WarnLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("warn", buf, buf)

	cl.Warn("warning", "reason", "test")
	tst.AssertTrue(t, strings.Contains(buf.String(), "level=warning"), "expected warning level in output")

	buf.Reset()
	cl.Info("info", "key", "value")
	tst.AssertTrue(t, buf.Len() == 0, "expected Info hidden at warn level")
}

func TestConsoleLogger_ErrorAlwaysLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("error", buf, buf)

	cl.Error("operation failed", errors.New("test error"), "op", "test")

	output := buf.String()
	tst.AssertTrue(t, strings.Contains(output, "level=error"), "expected error level in output")
	tst.AssertTrue(t, strings.Contains(output, "operation failed"), "expected message in output")
	tst.AssertTrue(t, strings.Contains(output, "test error"), "expected error in output")
	tst.AssertTrue(t, strings.Contains(output, "op=test"), "expected fields in output")
}

func TestConsoleLogger_ErrorToStderr(t *testing.T) {
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cl := newConsoleLogger("info", outBuf, errBuf)

	cl.Info("info message")
	cl.Error("error message", errors.New("test"))

	tst.AssertTrue(t, strings.Contains(outBuf.String(), "info message"), "expected info on stdout")
	tst.AssertFalse(t, strings.Contains(outBuf.String(), "error message"), "expected error kept off stdout")
	tst.AssertTrue(t, strings.Contains(errBuf.String(), "error message"), "expected error on stderr")
}

func TestConsoleLogger_Timestamp(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("info", buf, buf)

	cl.Info("test")

	tst.AssertTrue(t, strings.HasPrefix(buf.String(), "time="), "expected leading timestamp")
}

func TestNewConsoleLogger_DefaultLevel(t *testing.T) {
	for _, level := range []string{"", "loud"} {
		cl, ok := NewConsoleLogger(level).(*ConsoleLogger)
		tst.AssertTrue(t, ok, "expected ConsoleLogger type")
		tst.RequireDeepEqual(t, cl.Level(), "info")
	}
}

func TestConsoleLogger_MultipleFields(t *testing.T) {
	buf := &bytes.Buffer{}
	cl := newConsoleLogger("info", buf, buf)

	cl.Info("batch", "log", "a1b2", "items", 42, "sync", "strict", "dangling")

	output := buf.String()
	tst.AssertTrue(t, strings.Contains(output, "log=a1b2"), "expected log field")
	tst.AssertTrue(t, strings.Contains(output, "items=42"), "expected items field")
	tst.AssertTrue(t, strings.Contains(output, "sync=strict"), "expected sync field")
	tst.AssertFalse(t, strings.Contains(output, "dangling"), "expected unpaired key dropped")
}

func TestFileLogger_WritesContent(t *testing.T) {
	tmpDir := t.TempDir()
	fl, err := NewFileLogger(tmpDir, "test.log", 100, 5)
	tst.RequireNoError(t, err)

	fl.Info("test message", "key", "value")

	content, err := os.ReadFile(filepath.Join(tmpDir, "test.log")) // nolint:gosec
	tst.RequireNoError(t, err)

	output := string(content)
	tst.AssertTrue(t, strings.Contains(output, "info"), "expected 'info' level in output")
	tst.AssertTrue(t, strings.Contains(output, "test message"), "expected message in file")

	if c, ok := fl.(Closeable); ok {
		tst.RequireNoError(t, c.Close())
	}
}

func TestFileLogger_CreatesDirectory(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs", "deep", "dir")

	fl, err := NewFileLogger(logDir, "test.log", 100, 5)
	tst.RequireNoError(t, err)
	tst.AssertNotNil(t, fl, "expected non-nil FileLogger")

	_, err = os.Stat(logDir)
	tst.RequireNoError(t, err)
}

func TestFileLogger_RotationSettings(t *testing.T) {
	tmpDir := t.TempDir()

	fl, err := NewFileLogger(tmpDir, "rotating.log", 1, 0)
	tst.RequireNoError(t, err)
	fl.Info("kept")
	if c, ok := fl.(Closeable); ok {
		tst.RequireNoError(t, c.Close())
	}

	_, err = NewFileLogger(tmpDir, "bad.log", 0, 5)
	tst.AssertErrorIs(t, err, ErrLogCreate, "zero max size is rejected")
}

func TestMultiLogger_BothOutputs(t *testing.T) {
	buf1 := &bytes.Buffer{}
	buf2 := &bytes.Buffer{}

	ml := NewMultiLogger(newConsoleLogger("info", buf1, buf1), newConsoleLogger("info", buf2, buf2))
	ml.Info("test message", "key", "value")

	tst.AssertTrue(t, strings.Contains(buf1.String(), "test message"), "expected message in first logger")
	tst.AssertTrue(t, strings.Contains(buf2.String(), "test message"), "expected message in second logger")
}

func TestMultiLogger_Close(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir(), "test.log", 100, 5)
	tst.RequireNoError(t, err)

	buf := &bytes.Buffer{}
	ml := NewMultiLogger(newConsoleLogger("info", buf, buf), fl, NoOpLogger{})

	c, ok := ml.(Closeable)
	tst.AssertTrue(t, ok, "expected MultiLogger to implement Closeable")
	tst.RequireNoError(t, c.Close())
}

func TestNamed_AddsComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := Named(Named(newConsoleLogger("debug", buf, buf), "wal"), "engine")

	lg.Warn("sync failed", "batch", 3)

	output := buf.String()
	tst.AssertTrue(t, strings.Contains(output, "component=wal.engine"), "expected nested component name")
	tst.AssertTrue(t, strings.Contains(output, "batch=3"), "expected caller fields kept")
}

func TestNamed_NilInnerIsNoOp(t *testing.T) {
	lg := Named(nil, "wal")
	lg.Info("nothing")
	lg.Error("nothing", errors.New("x"))
}
