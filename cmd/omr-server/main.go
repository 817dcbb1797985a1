package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ironsheep/form-omr/internal/config"
	"github.com/ironsheep/form-omr/internal/handler"
	"github.com/ironsheep/form-omr/internal/omr"
	"github.com/ironsheep/form-omr/internal/order"
	"github.com/ironsheep/form-omr/internal/router"
)

// Version information - set by ldflags during build
var Version = "dev"

// shutdownGrace bounds how long in-flight requests may finish on shutdown.
const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg, err := cfg.Engine.ToEngineConfig()
	if err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	engine, err := omr.NewEngine(engineCfg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	// Initialize handlers
	uploads := handler.NewUploads(cfg.Upload.MaxFileSizeMB, cfg.Upload.TempDir)
	omrH := handler.NewOMRHandler(engine, uploads, cfg.Server.ProcessTimeout)
	orderH := handler.NewOrderHandler(order.NewBuilder(engine), uploads, cfg.Server.ProcessTimeout)
	healthH := handler.NewHealthHandler(Version)

	// Setup router
	r := router.Setup(omrH, orderH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (%d menu items, layout %s)",
			cfg.Server.Port, len(engineCfg.Form.Vocabulary), cfg.Engine.Layout)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
