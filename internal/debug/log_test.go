package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogDisabledByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	Disable()
	Log("voice", "ignored %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	Log("envelope", "stop %s", "C3")
	got := buf.String()
	if !strings.Contains(got, "envelope") || !strings.Contains(got, "stop C3") {
		t.Fatalf("log line = %q", got)
	}
}

func TestSometimesThrottles(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	for i := 0; i < 50; i++ {
		Sometimes(time.Hour, "fade", "step %d", i)
	}
	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Fatalf("lines = %d, want 1", n)
	}
}

func TestEnableToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("enable: %v", err)
	}
	Log("test", "hello")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("log file = %q", data)
	}
}
