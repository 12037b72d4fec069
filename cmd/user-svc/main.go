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
	"pawstogether/internal/dbmysql"
	"pawstogether/internal/di"
	"pawstogether/internal/observability"
)

func main() {
	log.Println("Starting User Service...")

	app, cleanup, err := di.InitializeUserService()
	if err != nil {
		log.Fatalf("Failed to initialize user service: %v", err)
	}
	defer cleanup()

	common.SetJWTSecret(app.Config.JWT.Secret)

	// user-svc owns the relational schema
	if err := app.DB.AutoMigrate(
		&dbmysql.User{},
		&dbmysql.Rating{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	app.Handlers.RegisterPublic(router)

	api := router.PathPrefix("/").Subrouter()
	api.Use(common.AuthMiddleware)
	app.Handlers.RegisterProtected(api)

	srv := &http.Server{
		Addr:         app.Config.Server.Host + ":" + app.Config.Server.UserServicePort,
		Handler:      observability.HTTPMetricsMiddleware("user", router),
		ReadTimeout:  time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(app.Config.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("User Service running on port %s", app.Config.Server.UserServicePort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down User Service...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("User Service stopped")
}
