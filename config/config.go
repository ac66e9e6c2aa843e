package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the bot and the scraper
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Delivery DeliveryConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Scraper  ScraperConfig
	Logging  LoggingConfig
	Service  ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	SQLitePath     string
	MigrationsPath string
	LogLevel       string
}

// DSN returns postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// StorageConfig holds audio file storage configuration
type StorageConfig struct {
	Backend     string
	Dir         string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

// DeliveryConfig holds audio delivery configuration
type DeliveryConfig struct {
	MaxAttempts       int
	DefaultTitle      string
	Performer         string
	ShowRatePerMinute int
	ListenStateTTL    time.Duration
	Locale            string
}

// RedisConfig holds Redis configuration, empty Addr disables Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled                bool
	Brokers                []string
	GroupID                string
	TopicAudioDelivered    string
	TopicAudioFailed       string
	TopicBroadcastIngested string
}

// ScraperConfig holds catalog scraper configuration
type ScraperConfig struct {
	StartURL string
	Schedule string
	Pause    time.Duration
	Timeout  time.Duration
	Limit    int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config   *Config
	Telegram *TelegramConfig
	Database *DatabaseConfig
	Storage  *StorageConfig
	Delivery *DeliveryConfig
	Redis    *RedisConfig
	Kafka    *KafkaConfig
	Scraper  *ScraperConfig
	Logging  *LoggingConfig
	Service  *ServiceConfig
}

// Out loads bot configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}
	return newResult(cfg), nil
}

// OutScraper loads scraper configuration and returns Result for fx injection
func OutScraper() (Result, error) {
	cfg, err := LoadScraper()
	if err != nil {
		return Result{}, err
	}
	return newResult(cfg), nil
}

func newResult(cfg *Config) Result {
	return Result{
		Config:   cfg,
		Telegram: &cfg.Telegram,
		Database: &cfg.Database,
		Storage:  &cfg.Storage,
		Delivery: &cfg.Delivery,
		Redis:    &cfg.Redis,
		Kafka:    &cfg.Kafka,
		Scraper:  &cfg.Scraper,
		Logging:  &cfg.Logging,
		Service:  &cfg.Service,
	}
}

// Load loads bot configuration from environment variables
func Load() (*Config, error) {
	cfg := read()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadScraper loads configuration for the scraper binary, which does not need a bot token
func LoadScraper() (*Config, error) {
	cfg := read()

	if err := cfg.validateCommon(); err != nil {
		return nil, err
	}
	if cfg.Scraper.StartURL == "" {
		return nil, fmt.Errorf("SCRAPER_START_URL is required")
	}

	return cfg, nil
}

func read() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	return &Config{
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID: getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnv("POSTGRES_PORT", "5432"),
			User:           getEnv("POSTGRES_USER", "postgres"),
			Password:       getEnv("POSTGRES_PASSWORD", "postgres"),
			Name:           getEnv("POSTGRES_DB", "franky"),
			SSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
			SQLitePath:     getEnv("SQLITE_PATH", "franky.db"),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
			LogLevel:       getEnv("DB_LOG_LEVEL", "warn"),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
			Dir:         getEnv("BROADCASTS_DIR", "./broadcasts"),
			S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3Bucket:    getEnv("S3_BUCKET", "broadcasts"),
			S3UseSSL:    getEnvBool("S3_USE_SSL", false),
		},
		Delivery: DeliveryConfig{
			MaxAttempts:       getEnvInt("DELIVERY_MAX_ATTEMPTS", 5),
			DefaultTitle:      getEnv("AUDIO_DEFAULT_TITLE", "Угадай, кто звонит"),
			Performer:         getEnv("AUDIO_PERFORMER", "Фрэнки - Шоу"),
			ShowRatePerMinute: getEnvInt("SHOW_RATE_PER_MINUTE", 10),
			ListenStateTTL:    getEnvDuration("LISTEN_STATE_TTL", 30*time.Minute),
			Locale:            getEnv("LOCALE", "ru"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:                getEnvBool("KAFKA_ENABLED", false),
			Brokers:                splitList(getEnv("KAFKA_BROKERS", "localhost:9093")),
			GroupID:                getEnv("KAFKA_GROUP_ID", "franky-bot-group"),
			TopicAudioDelivered:    getEnv("KAFKA_TOPIC_AUDIO_DELIVERED", "audio.delivered"),
			TopicAudioFailed:       getEnv("KAFKA_TOPIC_AUDIO_FAILED", "audio.delivery_failed"),
			TopicBroadcastIngested: getEnv("KAFKA_TOPIC_BROADCAST_INGESTED", "broadcasts.ingested"),
		},
		Scraper: ScraperConfig{
			StartURL: getEnv("SCRAPER_START_URL", ""),
			Schedule: getEnv("SCRAPER_SCHEDULE", ""),
			Pause:    getEnvDuration("SCRAPER_PAUSE", 2*time.Second),
			Timeout:  getEnvDuration("SCRAPER_TIMEOUT", 60*time.Second),
			Limit:    getEnvInt("SCRAPER_LIMIT", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "franky-bot"),
			Port: getEnv("SERVICE_PORT", "8081"),
		},
	}
}

// Validate validates the bot configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Delivery.MaxAttempts < 1 {
		return fmt.Errorf("DELIVERY_MAX_ATTEMPTS must be at least 1")
	}

	if c.Scraper.Schedule != "" && c.Scraper.StartURL == "" {
		return fmt.Errorf("SCRAPER_START_URL is required when SCRAPER_SCHEDULE is set")
	}

	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.Dir == "" {
			return fmt.Errorf("BROADCASTS_DIR is required for local storage")
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
