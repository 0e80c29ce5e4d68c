// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are optional: when DB_HOST is
// empty the server runs on the in-memory seat store, which is the mode used
// for local trials.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host; empty selects the in-memory store
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign operator JWTs
	AccessTTLMin     int    // access token time-to-live in minutes
	BcryptCost       int    // bcrypt cost for operator password hashing
	RetentionHours   int    // hours a booking may stand before auto-cancellation
	SweepIntervalMin int    // minutes between expiry sweeps
	PricingFile      string // optional JSON pricing override path
}

// Load reads configuration from the environment.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message; everything else has a working default.
func Load() Config {
	return Config{
		Env:              getenv("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		DBUser:           os.Getenv("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           os.Getenv("DB_HOST"),
		DBPort:           getenv("DB_PORT", "3306"),
		DBName:           os.Getenv("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     atoiDefault("ACCESS_TOKEN_TTL_MIN", 30),
		BcryptCost:       atoiDefault("BCRYPT_COST", 10),
		RetentionHours:   atoiDefault("RETENTION_HOURS", 24),
		SweepIntervalMin: atoiDefault("SWEEP_INTERVAL_MIN", 15),
		PricingFile:      os.Getenv("PRICING_FILE"),
	}
}

// UseDatabase reports whether a MySQL backing store is configured.
func (c Config) UseDatabase() bool {
	return c.DBHost != "" && c.DBName != "" && c.DBUser != ""
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the variable's value or def when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// atoiDefault parses an optional integer variable, exiting on malformed
// values so typos never silently fall back.
func atoiDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
