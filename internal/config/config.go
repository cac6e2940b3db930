// Package config loads the reader's runtime configuration from built-in
// defaults with an environment-variable overlay, following the teacher's
// internal/config/config.go. It does not read a configuration file; the
// JSON tags only shape String's output.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the complete runtime configuration for a logreader process.
type Config struct {
	Reader   ReaderConfig   `json:"reader"`
	LogStore LogStoreConfig `json:"log_store"`
	Bridge   BridgeConfig   `json:"bridge"`
	Auth     AuthConfig     `json:"auth"`
}

// ReaderConfig holds the two configuration keys spec §6 names.
type ReaderConfig struct {
	// ParquetTimeZoneID is the zone used when decoding timestamps lacking
	// zone info (spec §6 "parquet.time.zone.id"). Default "UTC".
	ParquetTimeZoneID string `json:"parquet.time.zone.id"`
	// LogCacheSize is an optional per-process LRU size on snapshots per
	// table; purely advisory (spec §6 "log.cacheSize").
	LogCacheSize int `json:"log.cacheSize"`
}

// LogStoreConfig selects and configures the file-store backend.
type LogStoreConfig struct {
	Backend string `json:"backend"` // "local" or "s3"
	Local   LocalStoreConfig `json:"local"`
	S3      S3StoreConfig    `json:"s3"`
}

// LocalStoreConfig configures logstore.LocalStore.
type LocalStoreConfig struct {
	TableRoot string `json:"table_root"`
}

// S3StoreConfig configures logstore.S3Store.
type S3StoreConfig struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
	Region string `json:"region"`
}

// BridgeConfig configures the HTTP/gRPC bridge (internal/bridge).
type BridgeConfig struct {
	HTTPAddr string `json:"http_addr"`
	GRPCAddr string `json:"grpc_addr"`
}

// AuthConfig configures the bearer-token guard in front of the bridge.
type AuthConfig struct {
	Enabled   bool   `json:"enabled"`
	JWTSecret string `json:"jwt_secret"`
}

// Load builds a Config from defaults overlaid with environment variables,
// matching the teacher's Load()/getEnv* pattern.
func Load() (*Config, error) {
	cfg := &Config{
		Reader: ReaderConfig{
			ParquetTimeZoneID: getEnvString("PARQUET_TIME_ZONE_ID", "UTC"),
			LogCacheSize:      getEnvInt("LOG_CACHE_SIZE", 16),
		},
		LogStore: LogStoreConfig{
			Backend: getEnvString("LOG_STORE_BACKEND", "local"),
			Local: LocalStoreConfig{
				TableRoot: getEnvString("LOG_STORE_TABLE_ROOT", "./data/table"),
			},
			S3: S3StoreConfig{
				Bucket: getEnvString("LOG_STORE_S3_BUCKET", ""),
				Prefix: getEnvString("LOG_STORE_S3_PREFIX", ""),
				Region: getEnvString("LOG_STORE_S3_REGION", "us-east-1"),
			},
		},
		Bridge: BridgeConfig{
			HTTPAddr: getEnvString("BRIDGE_HTTP_ADDR", ":8080"),
			GRPCAddr: getEnvString("BRIDGE_GRPC_ADDR", ":9090"),
		},
		Auth: AuthConfig{
			Enabled:   getEnvBool("AUTH_ENABLED", false),
			JWTSecret: getEnvString("JWT_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obviously broken values.
func (c *Config) Validate() error {
	if c.LogStore.Backend != "local" && c.LogStore.Backend != "s3" {
		return fmt.Errorf("invalid log store backend: %s", c.LogStore.Backend)
	}
	if c.LogStore.Backend == "s3" && c.LogStore.S3.Bucket == "" {
		return fmt.Errorf("log_store.s3.bucket is required when backend is s3")
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	return nil
}

// String returns a pretty-printed JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
