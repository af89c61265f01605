package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type JWTConfig struct {
	Secret string
}

type BookingConfig struct {
	// AssistantSignature is appended to event descriptions created by
	// the booking engine.
	AssistantSignature string
	AdvanceBookingDays int
}

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	GoogleAPI  GoogleAPIConfig
	JWT        JWTConfig
	Booking    BookingConfig
	// EncryptionMasterKey protects calendar tokens at rest.
	EncryptionMasterKey string
	FrontendURL         string
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (when present) and the environment into the process
// config. Safe to call once at startup.
func Load() (*Config, error) {
	// Missing .env is fine in deployed environments.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "booking_assistant")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BOOKING_ADVANCE_DAYS", 30)
	v.SetDefault("BOOKING_ASSISTANT_SIGNATURE", "Booked via booking assistant")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:     v.GetString("GOOGLE_CALENDAR_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CALENDAR_CLIENT_SECRET"),
			RedirectURI:  v.GetString("GOOGLE_CALENDAR_REDIRECT_URI"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Booking: BookingConfig{
			AssistantSignature: v.GetString("BOOKING_ASSISTANT_SIGNATURE"),
			AdvanceBookingDays: v.GetInt("BOOKING_ADVANCE_DAYS"),
		},
		EncryptionMasterKey: v.GetString("ENCRYPTION_MASTER_KEY"),
		FrontendURL:         v.GetString("FRONTEND_URL"),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()
	return cfg, nil
}

// Get returns the loaded config. Panics when Load has not run; use
// GetSafe where startup ordering is not guaranteed.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Load must be called before Get")
	}
	return instance
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// SetForTesting swaps the process config. Tests only.
func SetForTesting(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
