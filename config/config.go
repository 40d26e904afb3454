package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every process-wide setting. It is loaded once in main and
// handed to constructors; nothing reads the environment after startup.
type Config struct {
	Port string

	DBURL string

	JWT JWTConfig
	SMS SMSConfig
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type SMSConfig struct {
	// Provider selects the outbound channel: "kavenegar" or "twilio".
	Provider string

	KavenegarAPIKey string
	KavenegarAPIURL string
	Sender          string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Timeout bounds a single channel call.
	Timeout time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Port:  getEnv("PORT", "8080"),
		DBURL: os.Getenv("DB_URL"),
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Expiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		SMS: SMSConfig{
			Provider:         getEnv("SMS_PROVIDER", "kavenegar"),
			KavenegarAPIKey:  os.Getenv("SMS_API_KEY"),
			KavenegarAPIURL:  getEnv("SMS_API_URL", "https://api.kavenegar.com/v1"),
			Sender:           getEnv("SMS_SENDER", "10004346"),
			TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioFromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
			Timeout:          time.Duration(getEnvInt("SMS_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}

	if cfg.JWT.Secret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
