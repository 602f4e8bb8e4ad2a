package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/Tyrowin/friendchat/internal/server"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Friend chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := server.LoadConfig()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := log.StandardLogger()
	if err := server.ConfigureLogging(logger, *config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := server.NewHub(config, logger)
	server.StartHub(hub)

	httpServer := server.CreateServer(config.Port, server.SetupRoutes(hub))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.StartServer(httpServer)
	}()

	select {
	case err := <-serveErr:
		_ = hub.Shutdown(config.ShutdownTimeout)
		if err != nil {
			return exitRuntime, fmt.Errorf("http server: %w", err)
		}
		return exitOK, nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	code := exitOK
	var shutdownErr error
	if err := server.ShutdownServer(httpServer, config.ShutdownTimeout); err != nil {
		code, shutdownErr = exitRuntime, fmt.Errorf("http shutdown: %w", err)
	}
	if err := hub.Shutdown(config.ShutdownTimeout); err != nil {
		code, shutdownErr = exitRuntime, fmt.Errorf("hub shutdown: %w", err)
	}
	return code, shutdownErr
}
