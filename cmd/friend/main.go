package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/friendchat/internal/friendclient"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Friend error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := friendclient.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := friendclient.Dial(ctx, config)
	if err != nil {
		return exitRuntime, err
	}

	renderer := friendclient.Renderer{Colours: config.Colours}
	if err := friendclient.Run(ctx, conn, os.Stdin, os.Stdout, renderer); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
