package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Store     StoreConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Status    StatusConfig
	Email     EmailConfig
	OAuth     OAuthConfig
	Log       LogConfig
	Chatbot   ChatbotConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
	MaxRetry       int
}

// StoreConfig selects what happens when Mongo cannot be reached at start-up.
// Fallback "memory" switches to a process-local store; anything else is fatal.
type StoreConfig struct {
	Fallback string
}

// DatabaseConfig is the Postgres connection backing idempotency keys.
// When Enabled is false create endpoints run without replay protection.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// StatusConfig holds the normalized status sets used for classification
type StatusConfig struct {
	Lead    []string
	Pending []string
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type LogConfig struct {
	Level  string
	Format string
}

type ChatbotConfig struct {
	FallbackReply string
	MinScore      float64
}

// AdminConfig seeds the first admin account when the users collection is empty
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

const (
	DefaultLeadStatuses    = "converted,won,closed_won,qualified,deal_closed,lead"
	DefaultPendingStatuses = "new,pending,open,in_progress,contacted,follow_up,enquiry,enquiry_required"
)

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "enquiry-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "enquiries")
	viper.SetDefault("MONGO_MAX_POOL_SIZE", 50)
	viper.SetDefault("MONGO_CONNECT_TIMEOUT_SECONDS", 10)
	viper.SetDefault("MONGO_MAX_RETRY", 3)
	viper.SetDefault("STORE_FALLBACK", "")
	viper.SetDefault("DB_ENABLED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "enquiry")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LEAD_STATUS_LIST", DefaultLeadStatuses)
	viper.SetDefault("PENDING_STATUS_LIST", DefaultPendingStatuses)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_ENABLED", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("CHATBOT_FALLBACK_REPLY", "Thanks for reaching out! One of our executives will get back to you shortly.")
	viper.SetDefault("CHATBOT_MIN_SCORE", 0.2)
	viper.SetDefault("ADMIN_NAME", "Administrator")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Mongo: MongoConfig{
			URI:            viper.GetString("MONGO_URI"),
			Database:       viper.GetString("MONGO_DATABASE"),
			MaxPoolSize:    viper.GetUint64("MONGO_MAX_POOL_SIZE"),
			ConnectTimeout: time.Duration(viper.GetInt("MONGO_CONNECT_TIMEOUT_SECONDS")) * time.Second,
			MaxRetry:       viper.GetInt("MONGO_MAX_RETRY"),
		},
		Store: StoreConfig{
			Fallback: strings.ToLower(strings.TrimSpace(viper.GetString("STORE_FALLBACK"))),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: SplitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: SplitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: SplitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Status: StatusConfig{
			Lead:    SplitList(viper.GetString("LEAD_STATUS_LIST")),
			Pending: SplitList(viper.GetString("PENDING_STATUS_LIST")),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
			Enabled:  viper.GetBool("SMTP_ENABLED"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     viper.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: viper.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  viper.GetString("GOOGLE_REDIRECT_URL"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Chatbot: ChatbotConfig{
			FallbackReply: viper.GetString("CHATBOT_FALLBACK_REPLY"),
			MinScore:      viper.GetFloat64("CHATBOT_MIN_SCORE"),
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
	}
}

// SplitList splits a comma-separated setting, dropping blanks. Entries keep
// inner spaces, so "closed won" stays one entry.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
