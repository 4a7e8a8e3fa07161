package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Version is reported by /version and the startup banner.
const Version = "3.1"

type Config struct {
	// Telegram
	TelegramToken  string
	HomeChatID     int64
	TargetUserID   int64
	TargetReaction string

	// Persistence
	DBDriver string
	DBDSN    string

	// Redis feed cache; empty addr disables it
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Model provider
	AIProvider      string
	DeepSeekBaseURL string
	DeepSeekAPIKey  string
	DeepSeekModel   string
	MaxTokens       int
	Temperature     float64
	OllamaBaseURL   string
	OllamaModel     string

	// Assistant behavior
	Persona       string
	HistoryWindow int
	RetentionDays int

	// Dispatcher
	WorkerConcurrency int
	Triggers          map[string][]string
	RareResponses     map[string]string
	RareChance        float64
	TeamIDs           map[string]int64

	// Scheduled jobs
	DigestCron   string
	PurgeCron    string
	DigestCities map[string]string

	// Ops HTTP API
	OpsAddr      string
	OpsJWTSecret string

	// Feed keys
	OpenWeatherAPIKey string
	RapidAPIKey       string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		HomeChatID:     envInt64("HOME_CHAT_ID", 0),
		TargetUserID:   envInt64("TARGET_USER_ID", 0),
		TargetReaction: envStr("TARGET_REACTION", ""),

		DBDriver: envStr("DB_DRIVER", "sqlite"),
		DBDSN:    envStr("DB_DSN", "gavrila.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		AIProvider:      envStr("AI_PROVIDER", "deepseek"),
		DeepSeekBaseURL: envStr("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:   envStr("DEEPSEEK_MODEL", "deepseek-chat"),
		MaxTokens:       envInt("AI_MAX_TOKENS", 999),
		Temperature:     envFloat("AI_TEMPERATURE", 1.5),
		OllamaBaseURL:   envStr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     envStr("OLLAMA_MODEL", "llama3:latest"),

		Persona:       os.Getenv("PERSONA"),
		HistoryWindow: envInt("HISTORY_WINDOW", 30),
		RetentionDays: envInt("RETENTION_DAYS", 30),

		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 4),
		Triggers:          envJSON("KEYWORD_TRIGGERS", map[string][]string{}),
		RareResponses:     envJSON("KEYWORD_RARE_RESPONSES", map[string]string{}),
		RareChance:        envFloat("KEYWORD_RARE_CHANCE", 0.1),
		TeamIDs:           envJSON("TEAM_IDS", map[string]int64{}),

		DigestCron: envStr("DIGEST_CRON", "0 8 * * *"),
		PurgeCron:  envStr("PURGE_CRON", "0 0 * * *"),
		DigestCities: envJSON("DIGEST_CITIES", map[string]string{
			"Minsk":   "Minsk,BY",
			"Gomel":   "Gomel,BY",
			"Zhlobin": "Zhlobin,BY",
		}),

		OpsAddr:      envStr("OPS_ADDR", ":8080"),
		OpsJWTSecret: envStr("OPS_JWT_SECRET", "dev-secret-change-me"),

		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		RapidAPIKey:       os.Getenv("RAPIDAPI_KEY"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// envJSON decodes a JSON-valued env var, falling back to def on absence or
// malformed input (logged, not fatal).
func envJSON[T any](key string, def T) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out T
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		log.Printf("config: %s: bad json, using default: %v", key, err)
		return def
	}
	return out
}
