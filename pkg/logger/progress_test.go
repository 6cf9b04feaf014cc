package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestOperationLoggerSteps(t *testing.T) {
	var buf bytes.Buffer
	op := NewOperationLogger("reconciliation", NewWithWriter(&buf, InfoLevel)).WithField("run_id", "abc")

	op.Step("load bank")
	op.Step("load ledger")
	op.WithFields(Fields{"records": 3}).Success("done")

	out := buf.String()
	for _, want := range []string{"operation=reconciliation", "run_id=abc", "step_number=2", "status=success", "records=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "records=3") != 1 {
		t.Errorf("summary fields leaked into other entries:\n%s", out)
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, InfoLevel)

	if err := TimedOperation("write report", log, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "status=success") {
		t.Errorf("expected success entry, got %s", buf.String())
	}

	buf.Reset()
	boom := errors.New("disk full")
	if err := TimedOperation("write report", log, func() error { return boom }); err != boom {
		t.Fatalf("expected error to be returned, got %v", err)
	}
	if !strings.Contains(buf.String(), "status=error") || !strings.Contains(buf.String(), "disk full") {
		t.Errorf("expected error entry, got %s", buf.String())
	}
}
