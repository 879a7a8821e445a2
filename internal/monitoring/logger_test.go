package monitoring

import (
	"fmt"
	"testing"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() { Logf = original })
	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := capture(t)

	Logf("tracked %d", 3)
	if len(*lines) != 1 || (*lines)[0] != "tracked 3" {
		t.Fatalf("captured %q, want [\"tracked 3\"]", *lines)
	}

	SetLogger(nil)
	Logf("dropped")
	if len(*lines) != 1 {
		t.Errorf("muted logger still captured %q", *lines)
	}
}

func TestTagged(t *testing.T) {
	lines := capture(t)
	logf := Tagged("frigate")

	logf("lost target %s", "tgt_1")

	if len(*lines) != 1 || (*lines)[0] != "frigate: lost target tgt_1" {
		t.Errorf("captured %q", *lines)
	}
}

func TestTagged_FollowsLaterSetLogger(t *testing.T) {
	capture(t)
	logf := Tagged("missile")

	var got string
	SetLogger(func(format string, v ...interface{}) { got = fmt.Sprintf(format, v...) })
	logf("detonating")

	if got != "missile: detonating" {
		t.Errorf("got %q, want %q", got, "missile: detonating")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf should not be nil by default")
	}
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("test message: %s", "value")
}
