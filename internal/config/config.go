package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Steam     SteamConfig
	TradeBot  TradeBotConfig
	Jackpot   JackpotConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	FrontendURL    string
	BackendURL     string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds the auth code cache connection
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CodeTTL  time.Duration
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// SteamConfig holds Steam Web API configuration
type SteamConfig struct {
	APIKey    string
	AppID     int
	ContextID string
	MockAPI   bool
}

// TradeBotConfig holds the trade dispatch provider configuration
type TradeBotConfig struct {
	BaseURL        string
	APIKey         string
	HouseTradeURL  string
	MockAPI        bool
	OfferDelay     time.Duration
	PollInterval   time.Duration
	PollMaxElapsed time.Duration
}

// JackpotConfig holds the round engine timings and rules
type JackpotConfig struct {
	RoundDuration        time.Duration
	InterRoundDelay      time.Duration
	SpinDelay            time.Duration
	SpinDuration         time.Duration
	CommissionPercentage int
	MinParticipants      int
	HistoryWindow        time.Duration
}

// KafkaConfig holds the optional round event stream; empty Brokers disables it
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RateLimitConfig holds per-IP limits for join requests
type RateLimitConfig struct {
	JoinsPerSecond float64
	Burst          int
}

// Load loads configuration from a .env file, environment variables and config files
func Load(paths ...string) (*Config, error) {
	// A missing .env is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "5000")
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("Server.FrontendURL", "http://localhost:3000")
	v.SetDefault("Server.BackendURL", "http://localhost:5000")
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "skinjackpot")
	v.SetDefault("Redis.Addr", "localhost:6379")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.CodeTTL", 5*time.Minute)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", time.Hour)
	v.SetDefault("Steam.APIKey", "")
	v.SetDefault("Steam.AppID", 252490)
	v.SetDefault("Steam.ContextID", "2")
	v.SetDefault("Steam.MockAPI", true)
	v.SetDefault("TradeBot.BaseURL", "http://localhost:3001")
	v.SetDefault("TradeBot.APIKey", "")
	v.SetDefault("TradeBot.HouseTradeURL", "")
	v.SetDefault("TradeBot.MockAPI", true)
	v.SetDefault("TradeBot.OfferDelay", 5*time.Second)
	v.SetDefault("TradeBot.PollInterval", 10*time.Second)
	v.SetDefault("TradeBot.PollMaxElapsed", 10*time.Minute)
	v.SetDefault("Jackpot.RoundDuration", 10*time.Second)
	v.SetDefault("Jackpot.InterRoundDelay", 10*time.Second)
	v.SetDefault("Jackpot.SpinDelay", time.Second)
	v.SetDefault("Jackpot.SpinDuration", 5*time.Second)
	v.SetDefault("Jackpot.CommissionPercentage", 10)
	v.SetDefault("Jackpot.MinParticipants", 2)
	v.SetDefault("Jackpot.HistoryWindow", 24*time.Hour)
	v.SetDefault("Kafka.Brokers", []string{})
	v.SetDefault("Kafka.Topic", "jackpot-events")
	v.SetDefault("RateLimit.JoinsPerSecond", 2.0)
	v.SetDefault("RateLimit.Burst", 5)
	v.SetDefault("LogLevel", "info")
}
