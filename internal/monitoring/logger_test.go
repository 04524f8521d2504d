package monitoring

import (
	"fmt"
	"testing"
)

// captureLogf swaps in a recording logger and restores the original on
// cleanup. It returns a pointer to the captured lines.
func captureLogf(t *testing.T) *[]string {
	t.Helper()
	orig := Logf
	t.Cleanup(func() { Logf = orig })
	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := captureLogf(t)

	Logf("hello %d", 7)
	if len(*lines) != 1 || (*lines)[0] != "hello 7" {
		t.Fatalf("captured %v, want [hello 7]", *lines)
	}

	// Nil installs a no-op, not a nil func.
	SetLogger(nil)
	Logf("dropped")
	if len(*lines) != 1 {
		t.Errorf("no-op logger recorded %v", (*lines)[1:])
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf is nil by default")
	}
}

func TestDebugfGated(t *testing.T) {
	lines := captureLogf(t)
	origDebug := Debug
	t.Cleanup(func() { Debug = origDebug })

	Debug = false
	Debugf("quiet %s", "x")
	if len(*lines) != 0 {
		t.Errorf("Debugf logged %v with Debug off", *lines)
	}

	Debug = true
	Debugf("loud %s", "y")
	if len(*lines) != 1 || (*lines)[0] != "loud y" {
		t.Errorf("captured %v, want [loud y]", *lines)
	}
}
