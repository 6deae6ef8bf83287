package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// TestLoggingHelpers_WriteToBuffer verifies the package helper functions write
// formatted messages to the package-level logger `L`. The test swaps `L` with
// a buffer-backed logger and restores it afterwards.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	SetDebug(true)
	defer func() { L = prev }()

	Debugf("hello %s", "dbg")
	Infof("info %d", 1)
	Warnf("warn")
	Errorf("err %v", "E")

	out := buf.String()
	for _, want := range []string{"hello dbg", "info 1", "warn", "err E"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q; got: %s", want, out)
		}
	}
}

func TestSetDebug_DisabledHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = clog.New(&buf)
	defer func() { L = prev }()

	SetDebug(false)
	Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug output leaked with debug disabled: %s", buf.String())
	}
}

func TestSetOutput_TracksWriter(t *testing.T) {
	prevL, prevOut := L, Output()
	defer func() {
		L = prevL
		SetOutput(prevOut)
	}()
	L = clog.New(&bytes.Buffer{})

	var buf bytes.Buffer
	SetOutput(&buf)
	if Output() != &buf {
		t.Fatalf("Output did not return the writer passed to SetOutput")
	}
	Infof("redirected")
	if !strings.Contains(buf.String(), "redirected") {
		t.Fatalf("log line not written to new output: %q", buf.String())
	}
}
