package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr string
	LogLevel string

	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers       []string
	KafkaConsumerGroup string
	KafkaTopicJobs     string

	// S3/Storage
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	S3PublicURL string

	// Gemini API
	GeminiAPIKey      string
	GeminiAPIEndpoint string // if set, overrides default Gemini API base URL (e.g. http://host.docker.internal:31300/gemini)

	// Veo video generation
	VeoModel     string // standard model, e.g. veo-3.0-generate-preview
	VeoFastModel string // fast model, e.g. veo-3.0-fast-generate-preview

	// Video generation behavior
	VideoOutputDir    string        // local directory for generated files
	VideoPollInterval time.Duration // delay between operation status checks
	VideoMaxWait      time.Duration // max time to wait for an operation; 0 disables the bound

	// Prompt enhancement
	EnhancerModel string // Gemini model used to rewrite prompts, e.g. gemini-2.5-flash-lite

	// Listing
	MaxListLimit int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		KafkaBrokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "videogen-worker-main"),
		KafkaTopicJobs:     getEnv("KAFKA_TOPIC_JOBS", "videogen.jobs.v1"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "videogen-assets"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3UseSSL:    getEnvBool("S3_USE_SSL", false),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint: getEnv("GEMINI_API_ENDPOINT", ""),

		VeoModel:     getEnv("VEO_MODEL", "veo-3.0-generate-preview"),
		VeoFastModel: getEnv("VEO_FAST_MODEL", "veo-3.0-fast-generate-preview"),

		VideoOutputDir:    getEnv("VIDEO_OUTPUT_DIR", "./output"),
		VideoPollInterval: getEnvDuration("VIDEO_POLL_INTERVAL", 5*time.Second),
		VideoMaxWait:      getEnvDuration("VIDEO_MAX_WAIT", 30*time.Minute),

		EnhancerModel: getEnv("ENHANCER_MODEL", "gemini-2.5-flash-lite"),

		MaxListLimit: getEnvInt("MAX_LIST_LIMIT", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
