package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupLoggingDiscardsWithoutDebug(t *testing.T) {
	if f := setupLogging(false); f != nil {
		f.Close()
		t.Error("Expected no log file without -debug")
	}
	if log.Writer() != io.Discard {
		t.Errorf("Expected log output to be io.Discard, got %v", log.Writer())
	}
}

func TestSetupLoggingWritesFile(t *testing.T) {
	defer os.RemoveAll(logDir)

	f := setupLogging(true)
	if f == nil {
		t.Fatal("Expected a log file with -debug")
	}
	defer f.Close()

	if w := log.Writer(); w == os.Stdout || w == os.Stderr {
		t.Error("Log output must not share the screen")
	}

	log.Println("frame 1 composited")
	data, err := os.ReadFile(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "frame 1 composited") || !strings.Contains(string(data), "phosphor started") {
		t.Errorf("Unexpected log content %q", data)
	}
}

func TestSetupLoggingRotates(t *testing.T) {
	defer os.RemoveAll(logDir)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(logDir, logFileName)
	if err := os.WriteFile(logPath, make([]byte, maxLogSize+1), 0644); err != nil {
		t.Fatal(err)
	}

	f := setupLogging(true)
	if f == nil {
		t.Fatal("Expected a log file")
	}
	defer f.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := false
	for _, e := range entries {
		if e.Name() != logFileName && filepath.Ext(e.Name()) == ".log" {
			rotated = true
		}
	}
	if !rotated {
		t.Error("Expected the oversized log to be rotated")
	}

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() > maxLogSize {
		t.Errorf("Expected a fresh log file, got %d bytes", info.Size())
	}
}
