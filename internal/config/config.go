package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMS      SMSConfig
	Jackpot  JackpotConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// SMSConfig holds SMS gateway-specific configuration
type SMSConfig struct {
	BaseURL    string
	APIKey     string
	SenderID   string
	MockSMS    bool
}

// JackpotConfig holds draw engine and scheduler configuration
type JackpotConfig struct {
	SchedulerEnabled bool
	DrawGraceMinutes int    // DRAWING older than this is considered stuck
	RateLimitPerMin  int    // wager intake requests per user per minute
	RateLimitEnabled bool
	ServiceAPIKey    string // shared key the wagering core presents on intake calls
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "goldspin-casino")
	viper.SetDefault("Redis.Addr", "localhost:6379")
	viper.SetDefault("Redis.DB", 0)
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("SMS.MockSMS", true)
	viper.SetDefault("Jackpot.SchedulerEnabled", true)
	viper.SetDefault("Jackpot.DrawGraceMinutes", 10)
	viper.SetDefault("Jackpot.RateLimitPerMin", 120)
	viper.SetDefault("Jackpot.RateLimitEnabled", true)
	viper.SetDefault("LogLevel", "info")
}
