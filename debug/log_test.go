package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	if err := EnableAt(path); err != nil {
		t.Fatalf("EnableAt: %v", err)
	}
	if !Enabled() {
		t.Fatal("expected logging to be enabled")
	}
	Log("worker", "sent %d bytes", 3)
	for i := 0; i < 4; i++ {
		LogEvery(2, "frame", "tick")
	}
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"Debug logging started", "worker", "sent 3 bytes", "tick (every 2, count=4)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("expected logging to be disabled")
	}
	Log("x", "nothing %s", "here") // must not panic
}

func TestLogEveryRestartsPerSession(t *testing.T) {
	dir := t.TempDir()
	for run := 0; run < 2; run++ {
		path := filepath.Join(dir, "debug.log")
		if err := EnableAt(path); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			LogEvery(3, "frame", "restart")
		}
		Disable()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "restart (every 3, count=3)") {
			t.Fatalf("run %d: counter carried over:\n%s", run, data)
		}
	}
}
