package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
)

const (
	frontendAuto     = "auto"
	frontendTerminal = "terminal"
	frontendWindow   = "window"
)

// host describes where the process runs
type host struct {
	goos   string
	tty    bool
	getenv func(string) string
}

func currentHost() host {
	fd := os.Stdout.Fd()
	return host{
		goos:   runtime.GOOS,
		tty:    isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		getenv: os.Getenv,
	}
}

func (h host) hasDisplay() bool {
	switch h.goos {
	case "windows", "darwin":
		return true
	}
	return h.getenv("DISPLAY") != "" || h.getenv("WAYLAND_DISPLAY") != ""
}

// chooseFrontend resolves the -frontend flag. auto picks the window unless
// stdout is a terminal and there is no display to open one on.
func chooseFrontend(name string, h host) (string, error) {
	switch name {
	case frontendTerminal, frontendWindow:
		return name, nil
	case frontendAuto, "":
	default:
		return "", fmt.Errorf("unknown frontend %q (auto, terminal, window)", name)
	}
	if h.tty && !h.hasDisplay() {
		return frontendTerminal, nil
	}
	return frontendWindow, nil
}
