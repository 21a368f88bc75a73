package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

// FundRepository defines data access for funds.
type FundRepository interface {
	Create(ctx context.Context, tx Transaction, fund *domain.Fund) error
	GetByID(ctx context.Context, id string) (*domain.Fund, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Fund, error)
}

// InvestorRepository defines data access for investors.
type InvestorRepository interface {
	Create(ctx context.Context, tx Transaction, investor *domain.Investor) error
	GetByID(ctx context.Context, id string) (*domain.Investor, error)
	ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error)
	// ListAllByFund returns every investor of a fund ordered by id.
	ListAllByFund(ctx context.Context, fundID string) ([]*domain.Investor, error)
	// ListByFundForUpdate locks every investor of a fund in id order.
	ListByFundForUpdate(ctx context.Context, tx Transaction, fundID string) ([]*domain.Investor, error)
	// UpdateCapital persists called capital, distributions received and version.
	UpdateCapital(ctx context.Context, tx Transaction, investor *domain.Investor) error
}

// CapitalCallRepository defines data access for capital calls and their allocations.
type CapitalCallRepository interface {
	Create(ctx context.Context, tx Transaction, call *domain.CapitalCall) error
	GetByID(ctx context.Context, id string) (*domain.CapitalCall, error)
	ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.CapitalCall, error)
	// SumAllocationsByInvestor totals allocated call amounts per investor of a fund.
	SumAllocationsByInvestor(ctx context.Context, fundID string) (map[string]decimal.Decimal, error)
}

// DistributionRepository defines data access for executed distributions.
type DistributionRepository interface {
	Create(ctx context.Context, tx Transaction, dist *domain.Distribution) error
	GetByID(ctx context.Context, id string) (*domain.Distribution, error)
	ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.Distribution, error)
	// SumByInvestor totals distributed amounts per investor of a fund.
	SumByInvestor(ctx context.Context, fundID string) (map[string]decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations. A missing key is reported with found=false, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Metrics records business events.
type Metrics interface {
	FundCreated()
	InvestorOnboarded()
	CapitalCallIssued(amount decimal.Decimal, duration time.Duration)
	DistributionExecuted(proceeds, carry decimal.Decimal, duration time.Duration)
	AttributionCacheLookup(hit bool)
}
