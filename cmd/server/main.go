package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mobil_kargo/internal/config"
	"mobil_kargo/internal/geocode"
	"mobil_kargo/internal/jobs"
	"mobil_kargo/internal/logger"
	"mobil_kargo/internal/middleware"
	"mobil_kargo/internal/notifier"
	"mobil_kargo/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	settings := config.Load()

	// Connect to the database and seed the admin account
	config.InitDB()
	config.SeedAdmin()

	// Live-connection registry: created here, drained at shutdown
	hub := notifier.NewHub()

	geo := geocode.NewClient(settings.MapsBaseURL, settings.MapsTimeout)

	r := routes.SetupRouter(hub, geo)

	reconcile := jobs.NewReconcileJob()
	if err := reconcile.Start(); err != nil {
		log.Fatalf("could not start reconciliation job: %v", err)
	}

	srv := &http.Server{
		Addr:    "0.0.0.0:" + settings.Port,
		Handler: middleware.EnableCORS(r),
	}

	go func() {
		log.Printf("🚀 Server running at :%s", settings.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	reconcile.Stop()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
