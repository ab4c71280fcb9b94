// Package common provides shared configuration for the IRI lab applications.
package common

import (
	"os"
	"path/filepath"
)

// Config holds common configuration for all applications.
type Config struct {
	IRIServiceURL      string
	OutputDir          string
	DataDir            string
	ClickHouseHost     string
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
}

// DefaultConfig returns configuration with env overrides and sensible
// defaults.
func DefaultConfig() *Config {
	return &Config{
		IRIServiceURL:      getEnv("IRI_SERVICE_URL", "http://localhost:8606"),
		OutputDir:          getEnv("IRI_OUTPUT_DIR", "/var/lib/iri-lab/output"),
		DataDir:            getEnv("IRI_DATA_DIR", "/var/lib/iri-lab"),
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "127.0.0.1:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "iono"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
	}
}

// FluxDataDir returns the raw solar flux download directory.
func (c *Config) FluxDataDir() string {
	return filepath.Join(c.DataDir, "flux")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
