// internal/config/config.go
//
// Runtime configuration, read from the environment (and .env, loaded by main).
//
// Environment variables (defaults in brackets):
//   PORT [5175]                  HTTP listen port
//   LOG_LEVEL [info]             zerolog level
//   LOG_FORMAT [json]            "console" for human-readable logs
//   DB_TYPE [sqlite]             sqlite | sqlite-pure | postgres | mysql
//   DB_PATH [./data/ygodle.db]   SQLite file
//   DATABASE_URL                 PostgreSQL / MySQL DSN
//   CARDS_FILE                   card catalog JSON; embedded default when unset
//   GAME_TZ [Europe/Paris]       reference zone for day rollover
//   GAME_ROLLOVER_HOUR [12]      local hour a new game day starts
//   GAME_EPOCH [2024-01-01]      day number 1
//   MAX_ATTEMPTS [6]
//   RETENTION_DAYS [7]           how long per-device records are kept
//   DAILY_SALT [local_dev_salt]  card selection salt
//   JWT_SECRET [dev_secret_change_me]
//   ADMIN_KEY_HASH               bcrypt hash of the X-Admin-Key; admin routes off when unset
//   CLIENT_ORIGIN [http://localhost:5173]
//   SHARE_URL                    appended to share text
//   NODE_ENV                     "production" hardens cookies and disables dev routes

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robalobadob/ygodle/internal/database"
	"github.com/robalobadob/ygodle/internal/dayclock"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Database  database.Config
	CardsFile string

	Zone          string
	RolloverHour  int
	Epoch         string
	MaxAttempts   int
	RetentionDays int
	DailySalt     string

	JWTSecret    string
	AdminKeyHash string
	ClientOrigin string
	ShareURL     string
	Production   bool
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	c := Config{
		Port:      getEnv("PORT", "5175"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Database: database.Config{
			Type: getEnv("DB_TYPE", "sqlite"),
			Path: getEnv("DB_PATH", "./data/ygodle.db"),
			URL:  os.Getenv("DATABASE_URL"),
		},
		CardsFile:    os.Getenv("CARDS_FILE"),
		Zone:         getEnv("GAME_TZ", dayclock.DefaultZone),
		Epoch:        getEnv("GAME_EPOCH", dayclock.DefaultEpoch),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		ShareURL:     os.Getenv("SHARE_URL"),
		Production:   os.Getenv("NODE_ENV") == "production",
	}

	var err error
	if c.RolloverHour, err = envInt("GAME_ROLLOVER_HOUR", dayclock.DefaultRolloverHour); err != nil {
		return Config{}, err
	}
	if c.MaxAttempts, err = envInt("MAX_ATTEMPTS", 6); err != nil {
		return Config{}, err
	}
	if c.RetentionDays, err = envInt("RETENTION_DAYS", 7); err != nil {
		return Config{}, err
	}
	if c.MaxAttempts <= 0 || c.RetentionDays <= 0 {
		return Config{}, fmt.Errorf("config: MAX_ATTEMPTS and RETENTION_DAYS must be positive")
	}
	if c.Production && c.JWTSecret == "dev_secret_change_me" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set in production")
	}
	return c, nil
}

// Clock builds the day clock described by the configuration.
func (c Config) Clock() (*dayclock.Clock, error) {
	return dayclock.New(c.Zone, c.RolloverHour, c.Epoch)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}
