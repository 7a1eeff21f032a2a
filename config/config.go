package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// LLM configuration
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMProvider     string
	LLMModel        string

	// Canvas configuration
	CanvasAPIURL       string
	CanvasAccessToken  string
	CanvasInstituteURL string

	// Storage configuration
	DatabaseURL       string
	PineconeAPIKey    string
	PineconeIndexName string

	// Agent configuration
	MaxContextLength int
	Verbose          bool

	Port string
}

// LLMAPIKey returns the API key matching the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o"),
		CanvasAPIURL:       getEnv("CANVAS_API_URL", "http://localhost:8000"),
		CanvasAccessToken:  os.Getenv("CANVAS_ACCESS_TOKEN"),
		CanvasInstituteURL: getEnv("CANVAS_INSTITUTE_URL", "https://uncg.instructure.com"),
		DatabaseURL:        os.Getenv("DB_URL"),
		PineconeAPIKey:     os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName:  getEnv("PINECONE_INDEX_NAME", "canvasassist-content-index"),
		MaxContextLength:   getEnvInt("MAX_CONTEXT_LENGTH", 10),
		Verbose:            getEnvBool("VERBOSE", false),
		Port:               getEnv("PORT", "8080"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("[ERROR] Invalid boolean value for %s: %q, using default %t", key, value, fallback)
		return fallback
	}

	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[ERROR] Invalid integer value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}

	return parsed
}
