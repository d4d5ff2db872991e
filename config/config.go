package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	MongoURI  string
	MongoDB   string
	RedisAddr string
	HTTPPort  string

	// Session store TTLs.
	LiveTTL  time.Duration
	EndedTTL time.Duration

	// Game pacing.
	TurnDuration     time.Duration
	DrawInterval     time.Duration
	ClearDelay       time.Duration
	CountdownSeconds int

	MaxPlayers int
}

func Load() *Config {
	return &Config{
		MongoURI:  getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getEnv("MONGO_DB", "minigames"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:  getEnv("HTTP_PORT", "8080"),

		LiveTTL:  getDuration("SESSION_LIVE_TTL", 24*time.Hour),
		EndedTTL: getDuration("SESSION_ENDED_TTL", 5*time.Minute),

		TurnDuration:     getDuration("TURN_DURATION", 12*time.Second),
		DrawInterval:     getDuration("DRAW_INTERVAL", 5*time.Second),
		ClearDelay:       getDuration("CLEAR_DELAY", 5*time.Second),
		CountdownSeconds: getInt("COUNTDOWN_SECONDS", 3),

		MaxPlayers: getInt("MAX_PLAYERS", 8),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
