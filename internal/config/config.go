package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	HubSpot  HubSpotConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	MCP      MCPConfig
	Audit    AuditConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HubSpotConfig holds credentials and tuning for the ticketing vendor API.
type HubSpotConfig struct {
	BaseURL        string
	AccessToken    string
	TimeoutSeconds int
	// GroupProperty is the ticket property matched by the groups filter.
	GroupProperty string
	// FetchConcurrency bounds the per-ticket message fan-out. 1 keeps it sequential.
	FetchConcurrency int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for the tool API.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	// Clients maps client_id to a bcrypt hash of its secret.
	Clients map[string]string
	// ReadOnlyClients are denied write tools such as adding notes.
	ReadOnlyClients []string
	// ClientsFile is an optional YAML file of clients merged over Clients.
	ClientsFile string
}

// MCPConfig controls the MCP tool server.
type MCPConfig struct {
	Enabled   bool
	Transport string
	Addr      string
}

// AuditConfig toggles the tool event audit trail.
type AuditConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	clients, err := parseClients(os.Getenv("AUTH_CLIENTS"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_CLIENTS: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-tools"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HubSpot: HubSpotConfig{
			BaseURL:          strings.TrimRight(getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"), "/"),
			AccessToken:      os.Getenv("HUBSPOT_ACCESS_TOKEN"),
			TimeoutSeconds:   getEnvAsInt("HUBSPOT_TIMEOUT_SECONDS", 15),
			GroupProperty:    getEnv("HUBSPOT_GROUP_PROPERTY", "hs_pipeline"),
			FetchConcurrency: getEnvAsInt("HUBSPOT_FETCH_CONCURRENCY", 1),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Stream:   getEnv("REDIS_AUDIT_STREAM", "ticket-tools:events"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			Clients:               clients,
			ReadOnlyClients:       splitList(os.Getenv("AUTH_READONLY_CLIENTS")),
			ClientsFile:           os.Getenv("AUTH_CLIENTS_FILE"),
		},
		MCP: MCPConfig{
			Enabled:   getEnvAsBool("MCP_ENABLED", true),
			Transport: getEnv("MCP_TRANSPORT", "http"),
			Addr:      getEnv("MCP_ADDR", "0.0.0.0:8090"),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_ENABLED", true),
		},
	}

	if err := loadClientsFile(cfg.Auth.ClientsFile, &cfg.Auth); err != nil {
		return nil, fmt.Errorf("invalid AUTH_CLIENTS_FILE: %w", err)
	}

	if cfg.HubSpot.AccessToken == "" {
		return nil, fmt.Errorf("HUBSPOT_ACCESS_TOKEN is required")
	}
	if cfg.HubSpot.FetchConcurrency <= 0 {
		cfg.HubSpot.FetchConcurrency = 1
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the vendor HTTP client timeout.
func (h HubSpotConfig) Timeout() time.Duration {
	if h.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(h.TimeoutSeconds) * time.Second
}

// parseClients reads "id1:hash1,id2:hash2". Bcrypt hashes contain no commas.
func parseClients(raw string) (map[string]string, error) {
	clients := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return clients, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		id, hash, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" || hash == "" {
			return nil, fmt.Errorf("malformed client entry %q", pair)
		}
		clients[id] = hash
	}
	return clients, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
