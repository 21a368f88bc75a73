package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/engine"
)

// AttributionUseCase reports investor and fund performance.
type AttributionUseCase struct {
	fundRepo     FundRepository
	investorRepo InvestorRepository
	cache        Cache
	cacheTTL     time.Duration
	cfg          engine.AttributionConfig
	metrics      Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAttributionUseCase creates a new AttributionUseCase. A nil cache disables caching.
func NewAttributionUseCase(
	fundRepo FundRepository,
	investorRepo InvestorRepository,
	cache Cache,
	cacheTTL time.Duration,
	cfg engine.AttributionConfig,
	metrics Metrics,
	logger zerolog.Logger,
) *AttributionUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultAttributionCacheTTL
	}
	return &AttributionUseCase{
		fundRepo:     fundRepo,
		investorRepo: investorRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger.With().Str("component", "attribution").Logger(),
		now:          time.Now,
	}
}

// InvestorAttribution computes one investor's metrics as of the given day.
// A nil asOf means today.
func (uc *AttributionUseCase) InvestorAttribution(ctx context.Context, investorID string, asOf *time.Time) (*domain.AttributionMetrics, error) {
	investor, err := uc.investorRepo.GetByID(ctx, investorID)
	if err != nil {
		return nil, err
	}

	fund, err := uc.fundRepo.GetByID(ctx, investor.FundID)
	if err != nil {
		return nil, err
	}

	day := uc.asOfDay(asOf)
	attributor := uc.attributorFor(fund)
	key := attributionCacheKey(attributor.Config(), investor, day)

	if cached, ok := uc.lookup(ctx, key); ok {
		return cached, nil
	}

	m := attributor.Calculate(investor.ToRecord(), day)
	uc.store(ctx, key, &m)

	return &m, nil
}

// FundAttribution computes metrics for every investor of a fund and the pooled fund totals.
func (uc *AttributionUseCase) FundAttribution(ctx context.Context, fundID string, asOf *time.Time) (*domain.FundAttribution, error) {
	fund, err := uc.fundRepo.GetByID(ctx, fundID)
	if err != nil {
		return nil, err
	}

	investors, err := uc.investorRepo.ListAllByFund(ctx, fund.ID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.InvestorRecord, len(investors))
	for i, inv := range investors {
		records[i] = inv.ToRecord()
	}

	fa := uc.attributorFor(fund).CalculateFund(fund.ID, records, uc.asOfDay(asOf))
	return &fa, nil
}

// attributorFor applies the fund's hurdle to the configured policy.
func (uc *AttributionUseCase) attributorFor(fund *domain.Fund) *engine.Attributor {
	cfg := uc.cfg
	cfg.HurdleRatePct = fund.Terms.HurdleRatePct.InexactFloat64()
	return engine.NewAttributor(cfg)
}

func (uc *AttributionUseCase) asOfDay(asOf *time.Time) time.Time {
	t := uc.now()
	if asOf != nil && !asOf.IsZero() {
		t = *asOf
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (uc *AttributionUseCase) lookup(ctx context.Context, key string) (*domain.AttributionMetrics, bool) {
	if uc.cache == nil {
		return nil, false
	}

	data, found, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("attribution cache read failed")
		return nil, false
	}

	var m domain.AttributionMetrics
	if found {
		if err := json.Unmarshal(data, &m); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached attribution")
			found = false
		}
	}

	if uc.metrics != nil {
		uc.metrics.AttributionCacheLookup(found)
	}

	return &m, found
}

func (uc *AttributionUseCase) store(ctx context.Context, key string, m *domain.AttributionMetrics) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(m)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("failed to encode attribution")
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("attribution cache write failed")
	}
}

// attributionCacheKey changes whenever the investor's balances or the policy do, so stale entries are never read.
func attributionCacheKey(policy engine.AttributionConfig, investor *domain.Investor, day time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s",
		attributionCacheKeyPrefix, policy.Fingerprint(), investor.ID, investor.Version, day.Format(asOfDateLayout))
}
