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
	App     AppConfig
	Agent   AgentConfig
	Session SessionConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	SessionLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string // empty disables event forwarding
	RedisURL           string // empty keeps the session lease in memory
	JwtSecret          string // empty leaves session routes open
	EventTopic         string
}

type AgentConfig struct {
	Persona string
	Locale  string
	Rate    float64
	Pitch   float64
	Volume  float64
}

type SessionConfig struct {
	CaptureTimeout  time.Duration
	ReplyTimeout    time.Duration
	PlaybackTimeout time.Duration
	TTL             time.Duration
}

type TracingConfig struct {
	Enabled      bool
	OtlpEndpoint string
	ServiceName  string
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			SessionLogFilePath: getEnv("SESSION_LOG_FILE_PATH", "logs/session.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EventTopic:         getEnv("INTERACTION_EVENT_TOPIC", "interaction.events"),
		},
		Agent: AgentConfig{
			Persona: getEnv("AGENT_PERSONA", ""),
			Locale:  getEnv("AGENT_LOCALE", "en-US"),
			Rate:    getEnvAsFloat("SPEECH_RATE", 1.0),
			Pitch:   getEnvAsFloat("SPEECH_PITCH", 1.0),
			Volume:  getEnvAsFloat("SPEECH_VOLUME", 1.0),
		},
		Session: SessionConfig{
			CaptureTimeout:  getEnvAsDuration("CAPTURE_TIMEOUT", 15*time.Second),
			ReplyTimeout:    getEnvAsDuration("REPLY_TIMEOUT", 10*time.Second),
			PlaybackTimeout: getEnvAsDuration("PLAYBACK_TIMEOUT", 60*time.Second),
			TTL:             getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "voice-agent-be"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds := getEnvAsInt(key, -1); seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
