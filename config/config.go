package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects which repositories the container wires.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	// BackendRemote runs the identity-provider adapter over in-process
	// account and profile stores; medicamentos stay in memory.
	BackendRemote Backend = "remote"
)

// ParseBackend falls back to BackendMemory for unknown values.
func ParseBackend(s string) Backend {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendPostgres:
		return BackendPostgres
	case BackendRemote:
		return BackendRemote
	default:
		return BackendMemory
	}
}

// Config holds application configuration loaded from environment variables
// with defaults suited to local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string
	Backend Backend

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used
	UploadFolder           string
	PublicBaseURL          string // used by the in-memory file store

	// JWT
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch
	ElasticsearchAddrs  string // comma-separated
	ElasticsearchUser   string
	ElasticsearchPass   string
	ESMedicamentosIndex string

	// Reminders
	LowSupplyThreshold  float64
	LocationSyncTimeout time.Duration

	// Email
	CompanyName     string
	SupportURL      string
	MailSendEnabled bool

	// Rate limiting on auth endpoints
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getfloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("invalid float for %s: %v, using default %v", key, err, def)
			return def
		}
		return f
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "medication-reminder"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),
		Backend: ParseBackend(getenv("BACKEND", string(BackendMemory))),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "medication_reminder"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),
		UploadFolder:           getenv("UPLOAD_BUCKET_FOLDER", "medicamentos"),
		PublicBaseURL:          getenv("PUBLIC_BASE_URL", "http://localhost:8080/files"),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "devrefreshsecret"),
		AccessTTL:        getdur("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       getdur("JWT_REFRESH_TTL", 168*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs:  getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:   getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:   getenv("ELASTICSEARCH_PASSWORD", ""),
		ESMedicamentosIndex: getenv("ES_MEDICAMENTOS_INDEX", "medicamentos"),

		LowSupplyThreshold:  getfloat("LOW_SUPPLY_THRESHOLD", 5),
		LocationSyncTimeout: getdur("LOCATION_SYNC_TIMEOUT", 10*time.Second),

		CompanyName:     getenv("COMPANY_NAME", "Medication Reminder"),
		SupportURL:      getenv("SUPPORT_URL", ""),
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),

		AuthRateLimit:  getint("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getdur("AUTH_RATE_WINDOW", time.Minute),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// PostgresDSN returns a DSN compatible with pgx
func (c *Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string { return splitList(c.CORSAllowedOrigins) }

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string { return splitList(c.ElasticsearchAddrs) }
