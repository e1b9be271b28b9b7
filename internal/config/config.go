package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the posture service.
type Config struct {
	HTTPAddress           string
	JWTSecret             string
	JWTIssuer             string
	KafkaBrokers          []string
	FrameTopic            string
	FeedbackTopic         string
	ConsumerGroup         string
	FeedbackInterval      time.Duration
	FeedbackBuffer        int
	MinLandmarkVisibility float64
	LogLevel              string
	LogFile               string
	CORSOrigin            string
}

// Load reads an optional .env file, then environment variables, and applies defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv(), nil
}

// FromEnv reads environment variables and applies defaults.
func FromEnv() Config {
	return Config{
		HTTPAddress:           getEnv("HTTP_ADDRESS", ":8080"),
		JWTSecret:             getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:             getEnv("JWT_ISSUER", "i5e.identity"),
		KafkaBrokers:          splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		FrameTopic:            getEnv("FRAME_TOPIC", ""),
		FeedbackTopic:         getEnv("FEEDBACK_TOPIC", ""),
		ConsumerGroup:         getEnv("CONSUMER_GROUP_ID", "posture-frame-consumer"),
		FeedbackInterval:      getDurationEnv("FEEDBACK_INTERVAL", 3*time.Second),
		FeedbackBuffer:        getIntEnv("FEEDBACK_BUFFER", 64),
		MinLandmarkVisibility: getFloatEnv("MIN_LANDMARK_VISIBILITY", 0),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               getEnv("LOG_FILE", ""),
		CORSOrigin:            getEnv("CORS_ORIGIN", "*"),
	}
}

// ConsumeFrames reports whether the Kafka frame consumer should run.
func (c Config) ConsumeFrames() bool {
	return len(c.KafkaBrokers) > 0 && c.FrameTopic != ""
}

// PublishFeedback reports whether feedback cues go to Kafka.
func (c Config) PublishFeedback() bool {
	return len(c.KafkaBrokers) > 0 && c.FeedbackTopic != ""
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
