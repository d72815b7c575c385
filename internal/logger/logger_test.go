package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsVerbosity(t *testing.T) {
	buf := &bytes.Buffer{}
	quiet := New(false, buf)
	quiet.Debug("hidden")
	quiet.Warn("shown")
	_ = quiet.Sync()
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected debug output to be suppressed, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}

	buf.Reset()
	verbose := New(true, buf)
	verbose.Debug("visible")
	_ = verbose.Sync()
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output in verbose mode, got %q", buf.String())
	}
}
