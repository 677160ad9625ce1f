package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Cache     CacheConfig
	Delivery  DeliveryConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

// CacheConfig tunes the cart cache tier and its circuit breaker
type CacheConfig struct {
	CartTTL         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
}

// DeliveryConfig tunes the republish sweep
type DeliveryConfig struct {
	Subscribers      []string
	SweepInterval    time.Duration
	FailureThreshold time.Duration
	LookbackWindow   time.Duration
	SweepBatchSize   int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
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

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pos-transaction-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT_MS", 2000)
	viper.SetDefault("REDIS_READ_TIMEOUT_MS", 1000)
	viper.SetDefault("REDIS_WRITE_TIMEOUT_MS", 1000)
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_TOPIC", "pos.transactions")
	viper.SetDefault("CART_TTL_HOURS", 8)
	viper.SetDefault("BREAKER_FAILURES", 3)
	viper.SetDefault("BREAKER_COOLDOWN_SECONDS", 60)
	viper.SetDefault("DELIVERY_SUBSCRIBERS", []string{"report", "journal", "stock"})
	viper.SetDefault("DELIVERY_SWEEP_INTERVAL_MINUTES", 5)
	viper.SetDefault("DELIVERY_FAILURE_THRESHOLD_MINUTES", 15)
	viper.SetDefault("DELIVERY_LOOKBACK_HOURS", 24)
	viper.SetDefault("DELIVERY_SWEEP_BATCH", 100)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Addr:         viper.GetString("REDIS_ADDR"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			DialTimeout:  time.Duration(viper.GetInt("REDIS_DIAL_TIMEOUT_MS")) * time.Millisecond,
			ReadTimeout:  time.Duration(viper.GetInt("REDIS_READ_TIMEOUT_MS")) * time.Millisecond,
			WriteTimeout: time.Duration(viper.GetInt("REDIS_WRITE_TIMEOUT_MS")) * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetString("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Cache: CacheConfig{
			CartTTL:         time.Duration(viper.GetInt("CART_TTL_HOURS")) * time.Hour,
			BreakerFailures: viper.GetInt("BREAKER_FAILURES"),
			BreakerCooldown: time.Duration(viper.GetInt("BREAKER_COOLDOWN_SECONDS")) * time.Second,
		},
		Delivery: DeliveryConfig{
			Subscribers:      viper.GetStringSlice("DELIVERY_SUBSCRIBERS"),
			SweepInterval:    time.Duration(viper.GetInt("DELIVERY_SWEEP_INTERVAL_MINUTES")) * time.Minute,
			FailureThreshold: time.Duration(viper.GetInt("DELIVERY_FAILURE_THRESHOLD_MINUTES")) * time.Minute,
			LookbackWindow:   time.Duration(viper.GetInt("DELIVERY_LOOKBACK_HOURS")) * time.Hour,
			SweepBatchSize:   viper.GetInt("DELIVERY_SWEEP_BATCH"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
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
