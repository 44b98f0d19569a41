package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/phosphor/core"
)

var (
	configFlag   = flag.String("config", "", "TOML configuration file, watched for changes")
	debugFlag    = flag.Bool("debug", false, "write logs/phosphor.log")
	frontendFlag = flag.String("frontend", frontendAuto, "display: auto, terminal, window")
	profileFlag  = flag.String("profile", "", "effect profile overriding the configured one")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if f := setupLogging(*debugFlag); f != nil {
		defer f.Close()
	}

	frontend, err := chooseFrontend(*frontendFlag, currentHost())
	if err != nil {
		fmt.Fprintf(os.Stderr, "phosphor: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{
		ConfigPath: *configFlag,
		Profile:    *profileFlag,
		Frontend:   frontend,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "phosphor: %v\n", err)
		os.Exit(1)
	}
	err = a.run()
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "phosphor: %v\n", err)
		os.Exit(1)
	}
}
