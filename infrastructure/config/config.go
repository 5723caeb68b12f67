package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerPort         string
	Environment        string
	CORSAllowedOrigins []string

	// Record store
	StoreDriver     string
	SupabaseURL     string
	SupabaseAnonKey string
	DatabaseURL     string
	SQLitePath      string
	SeedFile        string
	MembersTable    string

	// Domain catalog
	CatalogFile   string
	MinGeneration int // 0 keeps the catalog value
	MaxGeneration int

	// AWS integrations
	AWSRegion    string
	EventBusName string
	ExportBucket string
	S3Endpoint   string // for S3-compatible stores
	ExportDir    string

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string
	LogFile  string

	// Admin authentication
	JWTSecret      string
	JWTIssuer      string
	AdminRateLimit int // requests per minute on mutation routes
	MaxImportBytes int64

	// Observability
	OTLPEndpoint string

	// Feature flags
	EnableMetrics        bool
	EnableTracing        bool
	EnableCircuitBreaker bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverSupabase)),
		SupabaseURL:     getEnv("SUPABASE_URL", getEnv("VITE_SUPABASE_URL", "")),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", getEnv("VITE_SUPABASE_ANON_KEY", "")),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "data/family.db"),
		SeedFile:        getEnv("SEED_FILE", ""),
		MembersTable:    getEnv("MEMBERS_TABLE", "family_members"),

		CatalogFile:   getEnv("CATALOG_FILE", ""),
		MinGeneration: getEnvInt("MIN_GENERATION", 0),
		MaxGeneration: getEnvInt("MAX_GENERATION", 0),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		EventBusName: getEnv("EVENT_BUS_NAME", ""),
		ExportBucket: getEnv("EXPORT_BUCKET", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		ExportDir:    getEnv("EXPORT_DIR", "exports"),

		IsLambda: getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		JWTIssuer: getEnv("ADMIN_JWT_ISSUER", "hazboun-directory"),

		AdminRateLimit: getEnvInt("ADMIN_RATE_LIMIT", 60),
		MaxImportBytes: int64(getEnvInt("MAX_IMPORT_BYTES", 10<<20)),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		EnableMetrics:        getEnvBool("ENABLE_METRICS", true),
		EnableTracing:        getEnvBool("ENABLE_TRACING", false),
		EnableCircuitBreaker: getEnvBool("ENABLE_CIRCUIT_BREAKER", false),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("missing Supabase configuration: set SUPABASE_URL and SUPABASE_ANON_KEY (or VITE_SUPABASE_URL and VITE_SUPABASE_ANON_KEY)")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want supabase, postgres, sqlite or memory)", c.StoreDriver)
	}

	if c.MembersTable == "" {
		return fmt.Errorf("MEMBERS_TABLE must not be empty")
	}
	if c.MinGeneration < 0 || c.MaxGeneration < 0 {
		return fmt.Errorf("generation bounds must not be negative")
	}
	if c.MinGeneration > 0 && c.MaxGeneration > 0 && c.MaxGeneration < c.MinGeneration {
		return fmt.Errorf("MAX_GENERATION %d is below MIN_GENERATION %d", c.MaxGeneration, c.MinGeneration)
	}

	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required in production")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ServerAddress is the listen address for the HTTP server.
func (c *Config) ServerAddress() string {
	return ":" + strings.TrimPrefix(c.ServerPort, ":")
}

// AdminAuthEnabled reports whether mutation routes require a token.
func (c *Config) AdminAuthEnabled() bool {
	return c.JWTSecret != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
