package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	LogLevel        string
	DatabasePath    string
	AmountTolerance string
	DateWindowDays  int
}

func New() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        os.Getenv("LOGLEVEL"),
		DatabasePath:    getEnv("DATABASEPATH", "bankfeed.db"),
		AmountTolerance: getEnv("RECONCILETOLERANCE", "0.01"),
		DateWindowDays:  getEnvInt("RECONCILEWINDOWDAYS", 7),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
