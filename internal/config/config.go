package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Network source kinds
const (
	SourcePostgres = "postgres"
	SourceCSV      = "csv"
	SourceGTFS     = "gtfs"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration (postgres source only)
	Database DatabaseConfig

	// Upstream network source configuration
	Source SourceConfig

	// Routing engine configuration
	Routing RoutingConfig

	// Scheduled graph refresh configuration
	Refresh RefreshConfig

	// Admin API configuration
	Admin AdminConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `validate:"required"`
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	Driver             string `validate:"oneof=postgres pgx"`
	MaxConnections     int    `validate:"gte=1"`
	MaxIdleConnections int    `validate:"gte=0"`
	ConnMaxLifetime    time.Duration
}

// SourceConfig selects where the stop, risk, stop-time and trip relations come from
type SourceConfig struct {
	Kind           string `validate:"oneof=postgres csv gtfs"`
	DataDir        string // csv: directory holding stops.csv, risk.csv, stop_times.csv, trips.csv
	GTFSPath       string // gtfs: path to a GTFS static zip
	RiskFile       string // gtfs: risk CSV (stop_id,risk_score)
	StopsTable     string `validate:"required"`
	RiskTable      string `validate:"required"`
	StopTimesTable string `validate:"required"`
	TripsTable     string `validate:"required"`
}

// RoutingConfig holds routing engine configuration
type RoutingConfig struct {
	MaxSnapDistanceMeters float64 `validate:"gte=0"` // 0 disables the check
	CacheSize             int     `validate:"gte=0"` // per-graph path cache entries, 0 disables
	EagerLoad             bool
}

// RefreshConfig holds the cron schedule for graph reloads
type RefreshConfig struct {
	Schedule string // cron spec with seconds field, empty disables
}

// AdminConfig holds admin API configuration
type AdminConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// HeadersWith returns a new slice holding AllowedHeaders plus any extra headers
// not already listed. AllowedHeaders itself is never modified.
func (c CORSConfig) HeadersWith(extra ...string) []string {
	headers := make([]string, 0, len(c.AllowedHeaders)+len(extra))
	headers = append(headers, c.AllowedHeaders...)
	for _, h := range extra {
		if !containsFold(headers, h) {
			headers = append(headers, h)
		}
	}
	return headers
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			Driver:             getEnv("DATABASE_DRIVER", "postgres"),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Source: SourceConfig{
			Kind:           getEnv("NETWORK_SOURCE", SourcePostgres),
			DataDir:        getEnv("NETWORK_DATA_DIR", ""),
			GTFSPath:       getEnv("NETWORK_GTFS_PATH", ""),
			RiskFile:       getEnv("NETWORK_RISK_FILE", ""),
			StopsTable:     getEnv("NETWORK_STOPS_TABLE", "stg_gtfs_stops"),
			RiskTable:      getEnv("NETWORK_RISK_TABLE", "int_network_risk"),
			StopTimesTable: getEnv("NETWORK_STOP_TIMES_TABLE", "stg_gtfs_stop_times"),
			TripsTable:     getEnv("NETWORK_TRIPS_TABLE", "stg_gtfs_trips"),
		},
		Routing: RoutingConfig{
			MaxSnapDistanceMeters: getEnvAsFloat("ROUTING_MAX_SNAP_DISTANCE_METERS", 0),
			CacheSize:             getEnvAsInt("ROUTING_CACHE_SIZE", 1024),
			EagerLoad:             getEnvAsBool("ROUTING_EAGER_LOAD", true),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("GRAPH_REFRESH_CRON", ""),
		},
		Admin: AdminConfig{
			JWTSecret:   getEnv("ADMIN_JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("ADMIN_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	for _, section := range []interface{}{c.Server, c.Source, c.Routing} {
		if err := v.Struct(section); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	switch c.Source.Kind {
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when NETWORK_SOURCE is postgres")
		}
		if err := v.Struct(c.Database); err != nil {
			return fmt.Errorf("invalid database configuration: %w", err)
		}
	case SourceCSV:
		if c.Source.DataDir == "" {
			return fmt.Errorf("NETWORK_DATA_DIR is required when NETWORK_SOURCE is csv")
		}
	case SourceGTFS:
		if c.Source.GTFSPath == "" {
			return fmt.Errorf("NETWORK_GTFS_PATH is required when NETWORK_SOURCE is gtfs")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid float value for %s, using default: %g", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
