package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/curved/internal/config"
	"github.com/elys-network/curved/internal/curves"
	"github.com/elys-network/curved/internal/logger"
	"github.com/elys-network/curved/internal/registry"
	"github.com/elys-network/curved/internal/state"
	"github.com/elys-network/curved/internal/types"
	"github.com/elys-network/curved/internal/web"
)

const SHUTDOWN_TIMEOUT = 10 * time.Second

// main is the entry point for the curve engine service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Curve Engine Starting...")

	// Initialize Database Connection (registration index + quote log).
	// The engine itself is stateless; without a database it serves quotes
	// from memory only.
	var observers []registry.Observer
	if os.Getenv("DB_HOST") != "" {
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		observers = append(observers, recordRegistration)
	} else {
		log.Warn().Msg("DB_HOST not set. Running without registration index or quote log.")
	}

	// --- 2. Curve Construction ---
	linear, err := curves.NewLinear("linear")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct linear curve")
	}
	progressive, err := curves.NewProgressive("progressive", config.ProgressiveSlope)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct progressive curve")
	}
	offsetProgressive, err := curves.NewOffsetProgressive("offset-progressive",
		config.OffsetProgressiveSlope, config.OffsetProgressiveOffset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct offset progressive curve")
	}
	pump, err := curves.NewPump("pump")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct pump curve")
	}

	// --- 3. Registry Assembly ---
	reg := registry.New(observers...)
	for _, curve := range []curves.Curve{linear, progressive, offsetProgressive, pump} {
		id, err := reg.AddCurve(curve)
		if err != nil {
			log.Fatal().Err(err).Str("name", curve.Name()).Msg("Failed to register curve")
		}
		log.Info().Uint64("curve_id", uint64(id)).Str("name", curve.Name()).Msg("Curve available")
	}

	// --- 4. Serve ---
	webServer := web.NewWebServer(config.WebPort, reg)
	httpServer := webServer.Server()
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting curve engine API")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Web server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// recordRegistration mirrors successful registrations into the database.
func recordRegistration(id types.CurveID, curve curves.Curve, name string) {
	err := state.SaveCurveRegistration(types.CurveInfo{
		ID:        id,
		Name:      name,
		MaxShares: curve.MaxShares(),
		MaxAssets: curve.MaxAssets(),
	})
	if err != nil {
		log.Error().Err(err).Uint64("curve_id", uint64(id)).Msg("Failed to index curve registration")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
