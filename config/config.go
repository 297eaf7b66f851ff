// Package config loads CLI defaults from .env files and the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sartorproj/ridecast/geo"
	"github.com/sartorproj/ridecast/model"
	"github.com/sartorproj/ridecast/sarima"
)

// Config holds the CLI defaults loaded from environment variables.
type Config struct {
	BoundariesPath  string
	NeighborhoodKey string
	BoroughKey      string

	DBPath          string
	OutputDir       string
	MetricsTextfile string

	HoldOut float64
	Cutoff  time.Time
	MaxIter int
}

// Load reads the given .env files (./.env when none are named) and returns a
// populated Config. Variables already set in the process take precedence.
func Load(files ...string) *Config {
	if err := godotenv.Load(files...); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		BoundariesPath:  getEnv("RIDECAST_BOUNDARIES", geo.DefaultPath),
		NeighborhoodKey: getEnv("RIDECAST_NEIGHBORHOOD_KEY", geo.DefaultNeighborhoodKey),
		BoroughKey:      getEnv("RIDECAST_BOROUGH_KEY", geo.DefaultBoroughKey),

		DBPath:          getEnv("RIDECAST_DB", ""),
		OutputDir:       getEnv("RIDECAST_OUTPUT_DIR", "./output"),
		MetricsTextfile: getEnv("RIDECAST_METRICS_TEXTFILE", ""),

		HoldOut: getEnvFloat("RIDECAST_HOLDOUT", 0.1),
		Cutoff:  getEnvDate("RIDECAST_CUTOFF", model.DefaultCutoff),
		MaxIter: getEnvInt("RIDECAST_MAX_ITER", sarima.DefaultMaxIter),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDate(key string, fallback time.Time) time.Time {
	if val := os.Getenv(key); val != "" {
		d, err := time.Parse(time.DateOnly, val)
		if err == nil {
			return d
		}
	}
	return fallback
}
