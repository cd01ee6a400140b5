package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"weather-page/api"
	"weather-page/config"
	"weather-page/datasource"
)

func main() {
	configFile := flag.String("config", "config.json", "Path to optional configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider := datasource.NewOpenWeatherMapProvider(cfg.APIKey, cfg.BaseURL, cfg.HTTPTimeout)
	log.Printf("Using %s at %s", provider.Name(), provider.Endpoints().BaseURL)
	if cfg.Home == nil {
		log.Printf("No device location configured, current location falls back to %v,%v",
			cfg.Fallback.Lat, cfg.Fallback.Lon)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(provider, cfg)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Shutdown complete")
}
