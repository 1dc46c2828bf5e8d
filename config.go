package main

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServiceConfig struct {
	ListenAddr string

	// annotator inference services
	GlinerURL          string
	ZeroShotURL        string
	LinguisticURL      string
	InferenceAuthToken string

	// llm pipeline
	GroqAPIKey string
	GroqModel  string

	// conversation context store; empty means in-process memory
	RedisURL   string
	ContextTTL time.Duration

	RateLimit int
	RateBurst int

	LogLevel string
}

func loadConfig() (*ServiceConfig, error) {
	godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("GROQ_MODEL", "llama3-70b-8192")
	v.SetDefault("CONTEXT_TTL", 30*time.Minute)
	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_BURST", 2000)
	v.SetDefault("LOG_LEVEL", "info")

	config := &ServiceConfig{
		ListenAddr:         v.GetString("LISTEN_ADDR"),
		GlinerURL:          v.GetString("GLINER_URL"),
		ZeroShotURL:        v.GetString("ZEROSHOT_URL"),
		LinguisticURL:      v.GetString("LINGUISTIC_URL"),
		InferenceAuthToken: v.GetString("INFERENCE_AUTH_TOKEN"),
		GroqAPIKey:         v.GetString("GROQ_API_KEY"),
		GroqModel:          v.GetString("GROQ_MODEL"),
		RedisURL:           v.GetString("REDIS_URL"),
		ContextTTL:         v.GetDuration("CONTEXT_TTL"),
		RateLimit:          v.GetInt("RATE_LIMIT"),
		RateBurst:          v.GetInt("RATE_BURST"),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}

	if config.GlinerURL == "" || config.ZeroShotURL == "" || config.LinguisticURL == "" {
		return nil, MedServerError("GLINER_URL, ZEROSHOT_URL and LINGUISTIC_URL must all be set")
	}
	return config, nil
}

type MedServerError string

func (err MedServerError) Error() string {
	return string(err)
}
