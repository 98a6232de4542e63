package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-kit/log/level"
)

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "warn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = level.Info(logger).Log("msg", "hidden")
	_ = level.Error(logger).Log("msg", "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Errorf("expected error line, got: %s", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = level.Debug(logger).Log("msg", "hello")

	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected json output, got: %s", buf.String())
	}
}

func TestNew_RejectsUnknownOptions(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(&bytes.Buffer{}, Options{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected a logger")
	}
	if err := OrNop(nil).Log("msg", "x"); err != nil {
		t.Errorf("nop logger returned error: %v", err)
	}
}
