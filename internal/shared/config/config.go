package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"resume-builder/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string `envconfig:"PORT" default:"8080"`
	Env             string `envconfig:"ENV" default:"dev"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	CORSAllowOrigin []string
	CORSRaw         string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`

	ObjectStoreType string `envconfig:"OBJECT_STORE" default:"local"`
	LocalStoreDir   string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL"`
	AWSRegion       string `envconfig:"AWS_REGION"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Prefix        string `envconfig:"S3_PREFIX"`
	SSEKMSKeyID     string `envconfig:"SSE_KMS_KEY_ID"`
	MinioEndpoint   string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket     string `envconfig:"MINIO_BUCKET" default:"resume-builder"`
	MinioUseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`

	GoogleClientID     string        `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `envconfig:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string        `envconfig:"GOOGLE_REDIRECT_URL"`
	UIRedirectURL      string        `envconfig:"UI_REDIRECT_URL"`
	LoginPath          string        `envconfig:"LOGIN_PATH" default:"/login"`
	DashboardPath      string        `envconfig:"DASHBOARD_PATH" default:"/dashboard"`
	JWTSecret          string        `envconfig:"JWT_SECRET"`
	JWTTTL             time.Duration `envconfig:"JWT_TTL" default:"24h"`

	EventsBackend    string `envconfig:"EVENTS_BACKEND" default:"none"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic       string `envconfig:"KAFKA_TOPIC" default:"resume-events"`
	RabbitMQURL      string `envconfig:"RABBITMQ_URL"`
	RabbitMQExchange string `envconfig:"RABBITMQ_EXCHANGE" default:"resume.events"`
	EventsQueueURL   string `envconfig:"EVENTS_SQS_QUEUE_URL"`

	RedisURL         string  `envconfig:"REDIS_URL"`
	ExportRatePerMin int     `envconfig:"EXPORT_RATE_PER_MIN" default:"6"`
	AuthRatePerMin   int     `envconfig:"AUTH_RATE_PER_MIN" default:"20"`
	ChromeBin        string  `envconfig:"CHROME_BIN"`
	ChromeControlURL string  `envconfig:"CHROME_CONTROL_URL"`
	ExportScale      float64 `envconfig:"EXPORT_SCALE" default:"2"`
	ExportPage       string  `envconfig:"EXPORT_PAGE" default:"A4"`
	ExportPaginate   bool    `envconfig:"EXPORT_PAGINATE" default:"false"`

	DisposedResultPolicy string        `envconfig:"DISPOSED_RESULT_POLICY" default:"ignore"`
	RefreshAfterSave     bool          `envconfig:"REFRESH_AFTER_SAVE" default:"true"`
	BuilderSessionIdle   time.Duration `envconfig:"BUILDER_SESSION_IDLE" default:"2h"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.normalize()

	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "" {
			return Config{}, fmt.Errorf("JWT_SECRET is required in production")
		}
	}
	if cfg.JWTSecret == "" {
		telemetry.Warn("config.jwt_secret_missing", map[string]any{"env": cfg.Env})
		cfg.JWTSecret = "dev-secret"
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.CORSAllowOrigin = splitAndTrim(c.CORSRaw)
	c.EventsBackend = strings.ToLower(strings.TrimSpace(c.EventsBackend))
	c.DisposedResultPolicy = strings.ToLower(strings.TrimSpace(c.DisposedResultPolicy))
	if c.ExportScale <= 0 {
		c.ExportScale = 2
	}
}

// IsDevLike reports whether in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}
