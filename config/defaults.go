package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Oracle:    DefaultOracleConfig(),
		Routing:   DefaultRoutingConfig(),
		Store:     DefaultStoreConfig(),
		Webhook:   DefaultWebhookConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultOracleConfig returns the default oracle settings. No provider
// is configured; routing then runs on capability baselines alone.
func DefaultOracleConfig() OracleConfig {
	return OracleConfig{
		Provider:       "none",
		Model:          "gemini-2.0-flash",
		Temperature:    0.1,
		MaxTokens:      1024,
		Timeout:        30 * time.Second,
		RateLimitRPS:   2,
		RateLimitBurst: 4,
	}
}

// DefaultRoutingConfig returns the default routing settings.
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		EvaluatorTimeout: 10 * time.Second,
		LogInteractions:  true,
	}
}

// DefaultStoreConfig returns the default persistence settings.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:    "memory",
		BaseDir: "data",
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			PoolSize:  10,
			KeyPrefix: "hrflow:",
		},
		SQLite:  SQLiteConfig{Path: "hrflow.db"},
		Timeout: 5 * time.Second,
	}
}

// DefaultWebhookConfig returns the default webhook settings. The URL is
// empty; notifications are then recorded but not delivered.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		Backoff:    time.Second,
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultTelemetryConfig returns the default telemetry settings.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:     false,
		ServiceName: "hrflow",
		MetricsAddr: ":9091",
	}
}
