package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	JWTSecret         string
	XenditSecretKey   string
	XenditPayoutsURL  string
	XenditWebhookKey  string
	CORSOrigins       []string
	InternalSecretKey string

	TokenValueINR         float64
	GSTRate               float64
	ShippingFlatFee       float64
	FreeShippingThreshold float64

	DashboardCacheTTL time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:            os.Getenv("DB_HOST"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBPort:            getEnv("DB_PORT", "5432"),
		AppPort:           getEnv("APP_PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		XenditSecretKey:   os.Getenv("XENDIT_APIKEY"),
		XenditPayoutsURL:  getEnv("XENDIT_PAYOUTS_URL", "https://api.xendit.co/v2/payouts"),
		XenditWebhookKey:  os.Getenv("XENDIT_WEBHOOK_TOKEN"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		TokenValueINR:         getFloat("TOKEN_VALUE_INR", 1.0),
		GSTRate:               getFloat("GST_RATE", 0.18),
		ShippingFlatFee:       getFloat("SHIPPING_FLAT_FEE", 40),
		FreeShippingThreshold: getFloat("FREE_SHIPPING_THRESHOLD", 0),

		DashboardCacheTTL: getDuration("DASHBOARD_CACHE_TTL", 30*time.Second),
		RetryAttempts:     getInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:    getDuration("RETRY_BASE_DELAY", time.Second),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
