package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glyphide/termcore/internal/infrastructure/config"
	"github.com/glyphide/termcore/internal/infrastructure/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	hostMode := flag.String("host-mode", "", "Process host mode: local or remote (overrides HOST_MODE)")
	hostURL := flag.String("host-url", "", "Remote process host URL (overrides HOST_URL)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *hostMode != "" {
		cfg.Host.Mode = *hostMode
	}
	if *hostURL != "" {
		cfg.Host.URL = *hostURL
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(context.Background()); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
