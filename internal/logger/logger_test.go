package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDebugfLevelGate(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "info.log")
	Setup(file, "INFO", 10, 3)
	Debugf("hidden at info level")

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden at info level") {
		t.Error("Debugf wrote at INFO level")
	}

	file = filepath.Join(dir, "debug.log")
	Setup(file, "debug", 10, 3) // level match is case-insensitive
	Debugf("visible at debug level")

	data, err = os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "DEBUG visible at debug level") {
		t.Errorf("Debugf missing at DEBUG level, log: %q", data)
	}
}
