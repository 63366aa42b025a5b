// Package config loads process configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Client configures the mobile client CLI.
type Client struct {
	BaseURL         string
	CredentialsPath string
	Latitude        float64
	Longitude       float64
}

// Server configures the dev backend.
type Server struct {
	Port        string
	UploadDir   string
	DBType      string
	SQLitePath  string
	PostgresDSN string
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

// LoadClient reads the client configuration. A missing .env file is not an
// error; plain environment variables take precedence over it.
func LoadClient() (*Client, error) {
	godotenv.Load()

	latitude, err := getenvFloat("STATIC_LATITUDE", 0)
	if err != nil {
		return nil, err
	}
	longitude, err := getenvFloat("STATIC_LONGITUDE", 0)
	if err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	return &Client{
		BaseURL:         getenv("BASE_URL", "http://localhost:8080"),
		CredentialsPath: getenv("CREDENTIALS_PATH", home+"/.toolsnap/credentials.json"),
		Latitude:        latitude,
		Longitude:       longitude,
	}, nil
}

func LoadServer() (*Server, error) {
	godotenv.Load()

	return &Server{
		Port:        getenv("PORT", "8080"),
		UploadDir:   getenv("UPLOAD_DIR", "./uploads"),
		DBType:      getenv("DB_TYPE", "sqlite"),
		SQLitePath:  getenv("DB_PATH", "./toolsnap.db"),
		PostgresDSN: os.Getenv("DB_DSN"),
	}, nil
}
