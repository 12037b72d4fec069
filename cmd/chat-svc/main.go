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

	"pawstogether/internal/common"
	"pawstogether/internal/di"
	"pawstogether/internal/observability"
)

func main() {
	log.Println("Starting Chat Service...")

	app, cleanup, err := di.InitializeChatService()
	if err != nil {
		log.Fatalf("Failed to initialize chat service: %v", err)
	}
	defer cleanup()

	common.SetJWTSecret(app.Config.JWT.Secret)

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	// websocket routes authenticate themselves (?token= fallback)
	app.WS.Register(router)

	api := router.PathPrefix("/").Subrouter()
	api.Use(common.AuthMiddleware)
	app.Handler.Register(api)

	srv := &http.Server{
		Addr:         app.Config.Server.Host + ":" + app.Config.Server.ChatServicePort,
		Handler:      observability.HTTPMetricsMiddleware("chat", router),
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Chat Service running on port %s", app.Config.Server.ChatServicePort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Chat Service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Chat Service stopped")
}
