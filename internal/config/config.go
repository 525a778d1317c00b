package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Env         string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	SecureCookies   bool          `mapstructure:"SECURE_COOKIES"`
	MaxBodyBytes    int64         `mapstructure:"MAX_BODY_BYTES"`
	// TimeZone decides what "today" means for delivery dates.
	TimeZone string `mapstructure:"TIME_ZONE"`

	// DBDriver is "postgres" or "sqlite".
	DBDriver       string `mapstructure:"DB_DRIVER"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	OrdersTopic  string `mapstructure:"ORDERS_TOPIC"`
	ReviewGroup  string `mapstructure:"REVIEW_GROUP_ID"`

	WhatsAppPhone  string `mapstructure:"WHATSAPP_PHONE"`
	DepositPercent int    `mapstructure:"DEPOSIT_PERCENT"`
	LeadDays       int    `mapstructure:"DELIVERY_LEAD_DAYS"`

	LinkAlphabet  string `mapstructure:"LINK_ALPHABET"`
	LinkMinLength int    `mapstructure:"LINK_MIN_LENGTH"`
}

var defaults = map[string]any{
	"SERVICE_NAME":       "storefront",
	"APP_ENV":            "development",
	"LOG_LEVEL":          "info",
	"HTTP_PORT":          "8080",
	"REQUEST_TIMEOUT":    "30s",
	"SHUTDOWN_TIMEOUT":   "10s",
	"SECURE_COOKIES":     false,
	"MAX_BODY_BYTES":     1 << 20,
	"TIME_ZONE":          "Europe/Madrid",
	"DB_DRIVER":          "postgres",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "postgres",
	"DB_PASSWORD":        "postgres",
	"DB_NAME":            "storefront",
	"DB_SSLMODE":         "disable",
	"SQLITE_PATH":        "storefront.db",
	"MIGRATIONS_PATH":    "internal/store/sqlstore/migrations",
	"MONGO_URI":          "mongodb://localhost:27017",
	"MONGO_DATABASE":     "storefront",
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"CACHE_TTL":          "15m",
	"KAFKA_BROKERS":      "localhost:9092",
	"ORDERS_TOPIC":       "orders",
	"REVIEW_GROUP_ID":    "review-worker",
	"WHATSAPP_PHONE":     "34600000000",
	"DEPOSIT_PERCENT":    25,
	"DELIVERY_LEAD_DAYS": 2,
	"LINK_ALPHABET":      "",
	"LINK_MIN_LENGTH":    6,
}

// Load reads configuration from the environment, optionally layered over a
// .env style file. A missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DepositPercent < 0 || c.DepositPercent > 100 {
		return fmt.Errorf("DEPOSIT_PERCENT must be between 0 and 100, got %d", c.DepositPercent)
	}
	if c.LeadDays < 0 {
		return fmt.Errorf("DELIVERY_LEAD_DAYS must not be negative")
	}
	if c.LinkMinLength < 0 || c.LinkMinLength > 255 {
		return fmt.Errorf("LINK_MIN_LENGTH must be between 0 and 255, got %d", c.LinkMinLength)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
