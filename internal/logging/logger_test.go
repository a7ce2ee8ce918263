package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	dataDir = ""
	config = loggingConfig{}
	configLoaded = false
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"session": true,
				"store": true,
				"task": true,
				"scoring": true,
				"embedding": true,
				"retrieval": true,
				"decay": true,
				"concurrency": true,
				"cli": true
			}
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Error("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategorySession, CategoryStore, CategoryTask,
		CategoryScoring, CategoryEmbedding, CategoryRetrieval, CategoryDecay,
		CategoryConcurrency, CategoryCLI,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("test info message for %s", cat)
		logger.Debug("test debug message for %s", cat)
		logger.Warn("test warn message for %s", cat)
		logger.Error("test error message for %s", cat)
	}

	Boot("convenience boot log")
	Session("convenience session log")
	Store("convenience store log")
	Task("convenience task log")
	Scoring("convenience scoring log")
	Embedding("convenience embedding log")
	Retrieval("convenience retrieval log")
	Decay("convenience decay log")
	Concurrency("convenience concurrency log")
	CLI("convenience cli log")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": false,
			"categories": {"boot": true, "store": true}
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if IsDebugMode() {
		t.Error("expected debug mode to be disabled (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryStore, CategoryTask} {
		if IsCategoryEnabled(cat) {
			t.Errorf("category %s should be disabled when debug_mode=false", cat)
		}
	}

	Boot("this should not be logged")
	logger := Get(CategoryBoot)
	logger.Info("this should not be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("expected no log files in production mode, found %d", len(entries))
		}
	} else if !os.IsNotExist(err) {
		t.Fatalf("unexpected stat error: %v", err)
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {"boot": true, "store": true, "decay": false, "retrieval": false}
		}
	}`
	if err := os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	defer CloseAll()

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("store should be enabled")
	}
	if IsCategoryEnabled(CategoryDecay) {
		t.Error("decay should be disabled")
	}
	if IsCategoryEnabled(CategoryRetrieval) {
		t.Error("retrieval should be disabled")
	}
	// not mentioned in config -> defaults to enabled
	if !IsCategoryEnabled(CategoryTask) {
		t.Error("task (not in config) should default to enabled")
	}

	Boot("should be logged")
	Store("should be logged")
	Decay("should not be logged")
	Retrieval("should not be logged")
	Task("should be logged (default enabled)")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, _ := os.ReadDir(logsPath)

	var hasBoot, hasStore, hasDecay, hasRetrieval bool
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.Contains(name, "boot"):
			hasBoot = true
		case strings.Contains(name, "store"):
			hasStore = true
		case strings.Contains(name, "decay"):
			hasDecay = true
		case strings.Contains(name, "retrieval"):
			hasRetrieval = true
		}
	}

	if !hasBoot {
		t.Error("expected boot log file")
	}
	if !hasStore {
		t.Error("expected store log file")
	}
	if hasDecay {
		t.Error("should not have decay log file (disabled)")
	}
	if hasRetrieval {
		t.Error("should not have retrieval log file (disabled)")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(`{"logging": {"level": "debug", "debug_mode": true}}`), 0644)

	resetLoggingState()
	Initialize(tempDir)
	defer CloseAll()

	timer := StartTimer(CategoryScoring, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("timer should have recorded non-zero duration")
	}

	CloseAll()
}
