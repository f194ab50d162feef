package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/github-stats-cache/internal/app"
	"github.com/thep200/github-stats-cache/internal/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port for the stats server to listen on (defaults to server.port)")
	loaderName := flag.String("config", "viper", "Config loader: viper or mock")
	flag.Parse()

	a, err := app.Load(*loaderName)
	if err != nil {
		stdlog.Fatalf("Failed to initialize: %v", err)
	}

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	err = run(context.Background(), a, *port, stop)
	if closeErr := a.Close(); closeErr != nil {
		a.Logger.Error(context.Background(), "Error releasing resources: %v", closeErr)
	}
	if err != nil {
		a.Logger.Error(context.Background(), "%v", err)
		os.Exit(1)
	}
}

// run serves until stop fires or the listener fails. Closing a is left to the caller.
func run(ctx context.Context, a *app.App, port int, stop <-chan os.Signal) error {
	if port == 0 {
		port = a.Config.Server.Port
	}

	var publisher server.Publisher
	if a.RefreshProducer != nil {
		publisher = a.RefreshProducer
	}
	handler := server.NewHandler(a.Logger, a.Config, a.Manager, publisher, a.Store)

	srv, err := server.NewServer(a.Logger, a.Config, handler, port)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	failed := make(chan error, 1)
	go func() {
		failed <- srv.Start()
	}()

	select {
	case err := <-failed:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		a.Logger.Error(ctx, "Error during server shutdown: %v", err)
	}

	a.Logger.Info(ctx, "Server shut down gracefully")
	return nil
}
