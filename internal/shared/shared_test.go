package shared

import (
	"bytes"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("expected non-empty ID")
		}
		if seen[id] {
			t.Fatalf("expected unique IDs, got %s twice", id)
		}
		seen[id] = true
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}
	if len(first) < 32 {
		t.Errorf("expected at least 32 chars of state, got %d", len(first))
	}

	second, err := GenerateState()
	if err != nil {
		t.Fatalf("failed to generate state: %v", err)
	}
	if first == second {
		t.Error("expected distinct state tokens")
	}
}

func TestOpenBrowserUnknownPlatform(t *testing.T) {
	orig := getRuntime
	getRuntime = func() string { return "plan9" }
	t.Cleanup(func() { getRuntime = orig })

	if err := OpenBrowser("http://localhost:8888"); err == nil {
		t.Error("expected error on unknown platform")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	if logger == nil {
		t.Fatal("expected a logger")
	}

	logger.Info("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("expected log output to reach the writer, got %q", buf.String())
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	child := WithLogger(logger, "component", "test")
	child.Info("tagged")

	if !bytes.Contains(buf.Bytes(), []byte("component")) {
		t.Errorf("expected key-value context in output, got %q", buf.String())
	}
}
