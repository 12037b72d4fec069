package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pawstogether/internal/di"
	"pawstogether/internal/observability"
)

func main() {
	log.Println("Starting Media Server...")

	app, cleanup, err := di.InitializeMediaServer()
	if err != nil {
		log.Fatalf("Failed to initialize media server: %v", err)
	}
	defer cleanup()

	// downloads are by unguessable id; no auth middleware here so that
	// embedded <img>/<video> URLs work without a token
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	app.Server.Register(router)

	srv := &http.Server{
		Addr:         app.Config.Server.Host + ":" + app.Config.Server.MediaServerPort,
		Handler:      observability.HTTPMetricsMiddleware("media", router),
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Media Server running on port %s", app.Config.Server.MediaServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Media Server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Media Server stopped")
}
