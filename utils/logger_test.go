package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerDropsBelowLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, LevelWarn)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)
	l.Error("failed %s", "load")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("below-level messages were written: %q", out.String())
	}
	if !strings.Contains(out.String(), "shown 3") {
		t.Errorf("warn message missing: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "failed load") {
		t.Errorf("error message missing from error sink: %q", errOut.String())
	}
}
