package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultAttributionCacheTTL bounds how long computed attribution metrics are reused
	DefaultAttributionCacheTTL = time.Hour

	attributionCacheKeyPrefix = "attribution"
	asOfDateLayout            = "2006-01-02"
)
