package config

import "time"

// OutboxConfig holds outbox worker configuration
type OutboxConfig struct {
	// PollInterval between claim attempts when the queue is empty
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// BatchSize is the maximum number of rows claimed per poll
	BatchSize int `mapstructure:"batch_size" validate:"min=1"`

	// MaxAttempts before a row is dead-lettered
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=1"`

	// BaseBackoff is the first retry delay; it doubles per attempt
	BaseBackoff time.Duration `mapstructure:"base_backoff"`

	// MaxBackoff caps the retry delay
	MaxBackoff time.Duration `mapstructure:"max_backoff"`
}

// InventoryConfig holds inventory engine configuration
type InventoryConfig struct {
	// SafetyStockThreshold triggers SafetyStockBreached when available
	// quantity drops below it after an adjustment
	SafetyStockThreshold int `mapstructure:"safety_stock_threshold" validate:"min=0"`

	// ReservationDays is the default reservation lifetime
	ReservationDays int `mapstructure:"reservation_days" validate:"min=1"`

	// DefaultLocationID is the fulfilment location order reservations draw from
	DefaultLocationID string `mapstructure:"default_location_id"`

	// ReservationStrategy is the strategy order-created reservations use:
	// "strict" or "partial"
	ReservationStrategy string `mapstructure:"reservation_strategy" validate:"omitempty,oneof=strict partial"`
}

// CostingConfig holds costing query configuration
type CostingConfig struct {
	// MaxConcurrentFetches caps parallel per-component receipt lookups
	MaxConcurrentFetches int `mapstructure:"max_concurrent_fetches" validate:"min=1"`
}

// EventBusConfig holds in-process bus configuration
type EventBusConfig struct {
	// BufferSize is the bounded channel capacity
	BufferSize int `mapstructure:"buffer_size" validate:"min=1"`
}
