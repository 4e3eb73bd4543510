// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-counselor/internal/app"
	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/services"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("go_counselor")

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}

	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           app.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("==================================================")
	log.Printf("Conselheiro da Família")
	log.Printf("==================================================")
	log.Printf("Server starting on port %s", port)
	log.Printf("Chat interface: http://localhost%s/", port)
	log.Printf("==================================================")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	timeout := app.ShutdownTimeout(cfg)
	log.Printf("Shutting down server gracefully (waiting up to %s for open requests)...", timeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	if err := application.Close(); err != nil {
		log.Printf("Closing storage failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
