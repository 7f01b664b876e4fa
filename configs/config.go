package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/facebook"
)

type Server struct {
	Port        string
	FrontendURL string
	BodyLimit   int
}

type AI struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
	Timeout     time.Duration
}

type Instagram struct {
	AppID        string
	AppSecret    string
	GraphBaseURL string
	TokenURL     string
}

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Stripe struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}

type Log struct {
	Level  string
	Format string
}

type Config struct {
	Server             Server
	PostgresURI        string
	RedisURI           string
	JWTSecret          string
	TokenEncryptionKey string
	AI                 AI
	Instagram          Instagram
	R2                 R2
	Stripe             Stripe
	Log                Log
}

func LoadConfig() *Config {
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:5173")
	return &Config{
		Server: Server{
			Port:        getEnv("PORT", ":3000"),
			FrontendURL: frontendURL,
			BodyLimit:   getEnvInt("BODY_LIMIT_MB", 20) * 1024 * 1024,
		},
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		RedisURI:           getEnv("REDIS_URI", "localhost:6379"),
		JWTSecret:          getEnv("AUTH_JWT_SECRET", ""),
		TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		AI: AI{
			Provider:    strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			BaseURL:     strings.TrimRight(getEnv("AI_BASE_URL", "https://ai.gateway.lovable.dev/v1"), "/"),
			APIKey:      getEnv("AI_API_KEY", ""),
			Model:       getEnv("AI_MODEL", "google/gemini-2.5-flash"),
			VisionModel: getEnv("AI_VISION_MODEL", "google/gemini-2.5-flash"),
			Temperature: getEnvFloat32("AI_TEMPERATURE", 0.8),
			Timeout:     getEnvDuration("AI_TIMEOUT", 45*time.Second),
		},
		Instagram: Instagram{
			AppID:        getEnv("INSTAGRAM_APP_ID", ""),
			AppSecret:    getEnv("INSTAGRAM_APP_SECRET", ""),
			GraphBaseURL: strings.TrimRight(getEnv("INSTAGRAM_GRAPH_URL", "https://graph.facebook.com/v21.0"), "/"),
			TokenURL:     getEnv("INSTAGRAM_TOKEN_URL", facebook.Endpoint.TokenURL),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		},
		Stripe: Stripe{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceID:       getEnv("STRIPE_PRICE_ID", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", frontendURL+"/dashboard?checkout=success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", frontendURL+"/pricing"),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
