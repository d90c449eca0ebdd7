package main

import (
	"log"

	"github.com/joho/godotenv"

	"gopower/internal"
	"gopower/internal/config"
	"gopower/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()
	server := ui.NewServer(appConfig, logger)

	log.Printf("Starting power calculator on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
