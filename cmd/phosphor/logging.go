package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "phosphor.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging sends the standard logger to logs/phosphor.log when debug is
// set and discards it otherwise. The screen belongs to the frontend, so logs
// never go to stdout or stderr. A file over maxLogSize is rotated first.
func setupLogging(debug bool) *os.File {
	log.SetOutput(io.Discard)
	if !debug {
		return nil
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil
	}

	path := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(path); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("phosphor_%s.log", time.Now().Format("20060102_150405")))
		if err := os.Rename(path, rotated); err != nil {
			return nil
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("=== phosphor started, pid %d ===", os.Getpid())
	return f
}
