package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Supabase  SupabaseConfig
	Storage   StorageConfig
	Discovery DiscoveryConfig
	Worker    WorkerConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	// TrustedProxies lists the IPs/CIDRs whose X-Forwarded-For is believed
	// when resolving the client IP. Empty means the socket peer is the client.
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	SnapshotTTL time.Duration
}

// AuthConfig selects how bearer tokens are verified: "firebase", "supabase",
// or "header" (trusts X-User-Id, development only).
type AuthConfig struct {
	Provider string
	Firebase FirebaseConfig
}

type FirebaseConfig struct {
	CredentialsPath string
}

type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// StorageConfig selects the object store backend: "supabase", "s3" or "memory".
type StorageConfig struct {
	Driver         string
	S3BucketPrefix string
	S3Region       string
	S3Endpoint     string
	PublicBaseURL  string
	MaxUploadBytes int64
}

type DiscoveryConfig struct {
	PageSize       int
	RateLimitRPS   float64
	RateLimitBurst int
}

type WorkerConfig struct {
	RefreshSchedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			TrustedProxies:  getEnvAsList("TRUSTED_PROXIES", nil),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "portfolio"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotTTL: getEnvAsDuration("PROJECT_SNAPSHOT_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			Provider: strings.ToLower(getEnv("AUTH_PROVIDER", "supabase")),
			Firebase: FirebaseConfig{
				CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			},
		},
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORAGE_DRIVER", "supabase")),
			S3BucketPrefix: getEnv("S3_BUCKET_PREFIX", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			PublicBaseURL:  getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		},
		Discovery: DiscoveryConfig{
			PageSize:       getEnvAsInt("DISCOVERY_PAGE_SIZE", 6),
			RateLimitRPS:   getEnvAsFloat("PUBLIC_RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("PUBLIC_RATE_LIMIT_BURST", 20),
		},
		Worker: WorkerConfig{
			RefreshSchedule: getEnv("WORKER_REFRESH_SCHEDULE", "@every 10m"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	for _, p := range c.Server.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
			}
		}
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Discovery.PageSize <= 0 {
		return fmt.Errorf("DISCOVERY_PAGE_SIZE must be positive")
	}

	switch c.Auth.Provider {
	case "firebase":
		if c.Auth.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for firebase auth")
		}
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for supabase auth")
		}
	case "header":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_PROVIDER=header is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	switch c.Storage.Driver {
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.ServiceRoleKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for supabase storage")
		}
	case "s3":
		if c.Storage.PublicBaseURL == "" {
			return fmt.Errorf("STORAGE_PUBLIC_BASE_URL is required for s3 storage")
		}
	case "memory":
		if c.IsProduction() {
			return fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
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
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
