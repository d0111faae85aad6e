package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"posts-service/internal/config"
	"posts-service/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	configFile := flag.String("config", "config.yml", "path to config file")
	envFile := flag.String("env", ".env", "path to .env file (optional)")
	flag.Parse()

	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(*envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatalf("Error loading %s: %v", *envFile, err)
		}
		log.Printf("No %s file found, using process environment", *envFile)
	}

	appConfig, err := config.InitConfig[config.Config](*configFile)
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}

	srv, err := server.NewServer(appConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = srv.Initialize(initCtx)
	cancel()
	if err != nil {
		_ = srv.Shutdown()
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting Posts Service")
	errChan := srv.Start()

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Printf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.Printf("Shutdown finished with error: %v", err)
	}

	log.Println("Posts Service stopped")
}
