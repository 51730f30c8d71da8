package config

import (
	"crypto/rand"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort    string
	DBPath        string
	SessionSecret []byte
	GridRows      int
	GridCols      int
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort:    getenv("SERVER_PORT", ":8080"),
		DBPath:        getenv("DB_PATH", "./fourline.db"),
		SessionSecret: generateSessionSecret(),
		GridRows:      getenvInt("GRID_ROWS", 6),
		GridCols:      getenvInt("GRID_COLS", 7),
		SweepInterval: getenvDuration("SWEEP_INTERVAL", 24*time.Hour),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func generateSessionSecret() []byte {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate session secret:", err)
	}
	return bytes
}
