package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jhubkonto/recipe-bloc-backend/config"
	"github.com/Jhubkonto/recipe-bloc-backend/handlers"
	"github.com/Jhubkonto/recipe-bloc-backend/store"
)

func main() {
	cfg := config.Load()

	client := config.ConnectDB(cfg.MongoURI)
	config.EnsureIndexes(client, cfg.MongoDB)

	st := store.NewMongo(client, cfg.MongoDB)
	recipeHandler := handlers.NewRecipeHandler(st, cfg.UploadDir)
	userHandler := handlers.NewUserHandler(st, cfg.JWTSecret, cfg.JWTExpiry)

	router := handlers.NewRouter(recipeHandler, userHandler, cfg.JWTSecret, cfg.UploadDir)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Println("Server started on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting MongoDB: %v", err)
	}
	log.Println("Server gracefully stopped")
}
