package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Identity. AUTH_MODE is "firebase" or "jwt".
	AuthMode  string `mapstructure:"AUTH_MODE"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Firebase service account (messaging + auth).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB         int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Payments. PAYMENT_GATEWAY is "stripe" or "fake".
	PaymentGateway       string `mapstructure:"PAYMENT_GATEWAY"`
	StripeKey            string `mapstructure:"STRIPE_KEY"`
	PaymentKeyID         string `mapstructure:"PAYMENT_KEY_ID"`
	PaymentSigningSecret string `mapstructure:"PAYMENT_SIGNING_SECRET"`
	SessionFeeAmount     int64  `mapstructure:"SESSION_FEE_AMOUNT"`
	SessionFeeCurrency   string `mapstructure:"SESSION_FEE_CURRENCY"`

	// Scheduling rules.
	DefaultTimezone        string `mapstructure:"DEFAULT_TIMEZONE"`
	SlotGranularityMinutes int    `mapstructure:"SLOT_GRANULARITY_MINUTES"`
	MaxTimesPerDay         int    `mapstructure:"MAX_TIMES_PER_DAY"`
	JoinWindowMinutes      int    `mapstructure:"JOIN_WINDOW_MINUTES"`

	// Lifecycle event stream. Empty brokers disables publishing.
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real environments inject variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "counselbook")
	viper.SetDefault("AUTH_MODE", "jwt")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	viper.SetDefault("PAYMENT_GATEWAY", "fake")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_KEY_ID", "")
	viper.SetDefault("PAYMENT_SIGNING_SECRET", "")
	viper.SetDefault("SESSION_FEE_AMOUNT", 9900)
	viper.SetDefault("SESSION_FEE_CURRENCY", "INR")
	viper.SetDefault("DEFAULT_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("SLOT_GRANULARITY_MINUTES", 15)
	viper.SetDefault("MAX_TIMES_PER_DAY", 3)
	viper.SetDefault("JOIN_WINDOW_MINUTES", 5)
	viper.SetDefault("KAFKA_BROKERS", []string{})
	viper.SetDefault("KAFKA_TOPIC", "counselbook.sessions")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
