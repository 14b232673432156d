package config

import (
	"fmt"
	"os"
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisURL    string

	// Content analyzer (optional: the moderation gate fails open when the
	// analyzer is absent or unreachable).
	AnalyzerURL    string
	AnalyzerAPIKey string
	AnalyzerModel  string

	// Durable publisher sidecar.
	PublisherURL string

	// Public network metadata reported by the publisher info endpoint.
	PublisherNetwork string
	GatewayBaseURL   string
	ExplorerURL      string
	RPCURL           string
	FaucetURL        string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		AnalyzerURL:      getEnv("ANALYZER_URL", ""),
		AnalyzerAPIKey:   getEnv("ANALYZER_API_KEY", ""),
		AnalyzerModel:    getEnv("ANALYZER_MODEL", "claude-3-5-sonnet-20241022"),
		PublisherURL:     getEnv("PUBLISHER_URL", ""),
		PublisherNetwork: getEnv("PUBLISHER_NETWORK", "devnet"),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", "https://gateway.irys.xyz"),
		ExplorerURL:      getEnv("EXPLORER_URL", "https://devnet.irys.xyz"),
		RPCURL:           getEnv("RPC_URL", "https://rpc.devnet.irys.xyz/v1"),
		FaucetURL:        getEnv("FAUCET_URL", "https://faucet.devnet.irys.xyz"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.PublisherURL == "" {
		return nil, fmt.Errorf("PUBLISHER_URL is required")
	}
	if cfg.AnalyzerURL != "" && cfg.AnalyzerAPIKey == "" {
		return nil, fmt.Errorf("ANALYZER_API_KEY is required when ANALYZER_URL is set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
