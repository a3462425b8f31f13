package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestInitDiscardsWithoutLogDir(t *testing.T) {
	Init(Config{Debug: false})
	defer Shutdown()

	// Must not panic and must return a usable logger
	Logger().Info("dropped")
}

func TestInitWritesToLogDir(t *testing.T) {
	dir := t.TempDir()
	Init(Config{LogDir: dir, Level: "debug", Debug: true})
	defer Shutdown()

	Logger().Info("hello", "key", "value")

	data, err := os.ReadFile(filepath.Join(dir, "tabman.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "hello" {
		t.Errorf("msg = %v, want hello", entry["msg"])
	}
}

func TestForComponentResolvesHandlerLazily(t *testing.T) {
	// Create the component logger BEFORE Init, like package-level vars do
	Shutdown()
	compLog := ForComponent(CompDriver)

	dir := t.TempDir()
	Init(Config{LogDir: dir, Level: "debug", Debug: true})
	defer Shutdown()

	compLog.Debug("component_event")

	data, err := os.ReadFile(filepath.Join(dir, "tabman.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != CompDriver {
		t.Errorf("component = %v, want %v", entry["component"], CompDriver)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	Init(Config{LogDir: dir, Level: "warn", Debug: true})
	defer Shutdown()

	Logger().Info("filtered")
	Logger().Warn("kept")

	data, _ := os.ReadFile(filepath.Join(dir, "tabman.log"))
	if string(data) == "" {
		t.Fatal("expected warn entry in log file")
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("msg = %v, want kept (info should be filtered)", entry["msg"])
	}
}
