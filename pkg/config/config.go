package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Billing BillingConfig `mapstructure:"billing"`
	Media   MediaConfig   `mapstructure:"media"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Stats   StatsConfig   `mapstructure:"stats"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	FrontendURL string `mapstructure:"frontend_url"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns the listen address
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// RedisConfig holds Redis connection settings. Redis is optional: when Addr
// is empty the idempotency guard on payment verification is disabled.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig holds session token settings
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// BillingConfig holds payment gateway settings
type BillingConfig struct {
	Gateway    string `mapstructure:"gateway"` // mock or razorpay
	KeyID      string `mapstructure:"key_id"`
	KeySecret  string `mapstructure:"key_secret"`
	PlanID     string `mapstructure:"plan_id"`
	RefundDays int    `mapstructure:"refund_days"`
}

// MediaConfig holds object storage (Cloudinary) settings
type MediaConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// SMTPConfig holds mail delivery settings
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// StatsConfig holds stats snapshot settings
type StatsConfig struct {
	SnapshotCron string `mapstructure:"snapshot_cron"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// A missing .env is fine; environment variables may still be set.
		// A .env that exists but does not parse is a startup error, not
		// something to silently degrade past.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bind(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "coursebundler-api")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")

	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 4000)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")

	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "coursebundler")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_TTL", "360h") // 15 days

	v.SetDefault("GATEWAY", "mock")
	v.SetDefault("PLAN_ID", "plan_P8svxFFDKx4EU9")
	v.SetDefault("REFUND_DAYS", 7)

	v.SetDefault("SMTP_PORT", 587)

	// Literal cadence of the original deployment: 00:00 on day-of-month 5.
	v.SetDefault("STATS_SNAPSHOT_CRON", "0 0 5 * *")
}

func bind(v *viper.Viper, cfg *Config) {
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENV")
	cfg.App.FrontendURL = v.GetString("FRONTEND_URL")

	cfg.Server.Host = v.GetString("HOST")
	cfg.Server.Port = v.GetInt("PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	cfg.MongoDB.URI = v.GetString("MONGODB_URI")
	cfg.MongoDB.Database = v.GetString("MONGODB_DATABASE")

	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")

	cfg.JWT.Secret = v.GetString("JWT_SECRET")
	cfg.JWT.TTL = v.GetDuration("JWT_TTL")

	cfg.Billing.Gateway = v.GetString("GATEWAY")
	cfg.Billing.KeyID = v.GetString("RAZORPAY_KEY")
	cfg.Billing.KeySecret = v.GetString("RAZORPAY_SECRET")
	cfg.Billing.PlanID = v.GetString("PLAN_ID")
	cfg.Billing.RefundDays = v.GetInt("REFUND_DAYS")

	cfg.Media.CloudName = v.GetString("CLOUDINARY_NAME")
	cfg.Media.APIKey = v.GetString("CLOUDINARY_API_KEY")
	cfg.Media.APISecret = v.GetString("CLOUDINARY_API_SECRET")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.User = v.GetString("SMTP_USER")
	cfg.SMTP.Password = v.GetString("SMTP_PASS")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Stats.SnapshotCron = v.GetString("STATS_SNAPSHOT_CRON")
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MongoDB.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Billing.Gateway == "razorpay" && (c.Billing.KeyID == "" || c.Billing.KeySecret == "") {
		return fmt.Errorf("RAZORPAY_KEY and RAZORPAY_SECRET are required for the razorpay gateway")
	}
	return nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true when running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
