package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey string
	DBPath     string
	ServerPort string
	LogLevel   string

	// Twitch credentials and streamer identity for automatic starting-rating
	// capture. All optional; the capture scheduler no-ops when incomplete.
	TwitchClientID     string
	TwitchClientSecret string
	TwitchChannel      string
	SummonerName       string
	SummonerTag        string
	SummonerRegion     string
	CaptureInterval    time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:         getEnv("RIOT_API_KEY", ""),
		DBPath:             getEnv("DB_PATH", "tracker.db"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TwitchClientID:     getEnv("TWITCH_CLIENT_ID", ""),
		TwitchClientSecret: getEnv("TWITCH_CLIENT_SECRET", ""),
		TwitchChannel:      getEnv("TWITCH_CHANNEL", ""),
		SummonerName:       getEnv("SUMMONER_NAME", ""),
		SummonerTag:        getEnv("SUMMONER_TAG", ""),
		SummonerRegion:     getEnv("SUMMONER_REGION", ""),
		CaptureInterval:    constants.DefaultCaptureEvery,
	}

	if v := os.Getenv("CAPTURE_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CaptureInterval = d
		} else {
			logger.Warn().Str("value", v).Msg("invalid CAPTURE_POLL_INTERVAL, using default")
		}
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("twitch_channel", cfg.TwitchChannel).
		Dur("capture_interval", cfg.CaptureInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
