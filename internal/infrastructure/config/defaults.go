package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "omscore"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "omscore"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Outbox defaults
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = 500 * time.Millisecond
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.MaxAttempts == 0 {
		cfg.Outbox.MaxAttempts = 8
	}
	if cfg.Outbox.BaseBackoff == 0 {
		cfg.Outbox.BaseBackoff = 2 * time.Second
	}
	if cfg.Outbox.MaxBackoff == 0 {
		cfg.Outbox.MaxBackoff = 10 * time.Minute
	}

	// Inventory defaults
	if cfg.Inventory.SafetyStockThreshold == 0 {
		cfg.Inventory.SafetyStockThreshold = 10
	}
	if cfg.Inventory.ReservationDays == 0 {
		cfg.Inventory.ReservationDays = 7
	}
	if cfg.Inventory.DefaultLocationID == "" {
		cfg.Inventory.DefaultLocationID = "MAIN"
	}
	if cfg.Inventory.ReservationStrategy == "" {
		cfg.Inventory.ReservationStrategy = "partial"
	}

	// Costing defaults
	if cfg.Costing.MaxConcurrentFetches == 0 {
		cfg.Costing.MaxConcurrentFetches = 10
	}

	// Event bus defaults
	if cfg.EventBus.BufferSize == 0 {
		cfg.EventBus.BufferSize = 32
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
