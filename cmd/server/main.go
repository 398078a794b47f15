package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nekogravitycat/barbershop-booking-backend/internal/app"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/config"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/tracing"
)

const serviceName = "barbershop-booking"

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New(serviceName, cfg.LogLevel)

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		lg.Error("failed to set up tracing", "err", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, lg)
	if err != nil {
		lg.Error("failed to start", "err", err)
		os.Exit(1)
	}

	if container.Reminders != nil {
		container.Reminders.Start()
		lg.Info("reminder job scheduled", "cron", cfg.ReminderCron, "timezone", cfg.Location.String())
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(container.Router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("server running", "addr", cfg.HTTPAddr, "backend", cfg.DataBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", "err", err)
	}

	// Let a reminder run in progress finish before closing its connections.
	if container.Reminders != nil {
		select {
		case <-container.Reminders.Stop().Done():
		case <-shutdownCtx.Done():
			lg.Warn("reminder job still running at shutdown")
		}
	}

	if err := container.Close(); err != nil {
		lg.Error("failed to close resources", "err", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		lg.Error("failed to flush traces", "err", err)
	}

	lg.Info("server exited gracefully")
}
