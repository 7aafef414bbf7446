package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yegors/tailwinds/internal/api"
	"github.com/yegors/tailwinds/internal/config"
	"github.com/yegors/tailwinds/internal/weather"
	"github.com/yegors/tailwinds/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting tailwinds server",
		logger.String("version", Version),
		logger.String("airport", cfg.Station.AirportCode),
		logger.Strings("runways", cfg.Station.Runways),
	)

	tiers, err := cfg.TierThresholds()
	if err != nil {
		log.Error("Invalid thresholds", logger.Error(err))
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Error("Invalid timezone", logger.Error(err))
		os.Exit(1)
	}

	weatherConfig := weatherConfigFrom(cfg)
	weatherService, err := weather.NewService(weatherConfig, weather.Station{
		Airport:                cfg.Station.AirportCode,
		Runways:                cfg.Station.Runways,
		Nearby:                 cfg.Station.Nearby,
		Location:               loc,
		Tiers:                  tiers,
		Latitude:               cfg.Station.Latitude,
		Longitude:              cfg.Station.Longitude,
		ElevationFeet:          cfg.Station.ElevationFeet,
		ApplyMagneticVariation: cfg.Station.ApplyMagneticVariation,
	}, weather.NewClient(weatherConfig, log), log)
	if err != nil {
		log.Error("Failed to create weather service", logger.Error(err))
		os.Exit(1)
	}
	if err := weatherService.Start(); err != nil {
		log.Error("Failed to start weather service", logger.Error(err))
		os.Exit(1)
	}

	router := api.NewRouter(weatherService, cfg, log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", logger.String("addr", server.Addr), logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	weatherService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}

func weatherConfigFrom(cfg *config.Config) weather.Config {
	return weather.Config{
		APIBaseURL:             cfg.Weather.APIBaseURL,
		RequestTimeoutSeconds:  cfg.Weather.RequestTimeoutSeconds,
		MaxRetries:             cfg.Weather.MaxRetries,
		RateLimitPerSecond:     cfg.Weather.RateLimitPerSecond,
		RateLimitBurst:         cfg.Weather.RateLimitBurst,
		RefreshIntervalMinutes: cfg.Weather.RefreshIntervalMinutes,
		CacheExpiryMinutes:     cfg.Weather.CacheExpiryMinutes,
		TafHours:               cfg.Weather.TafHours,
		RadarSite:              cfg.Weather.Radar,
		RedKeywords:            cfg.RedKeywords,
	}
}
