package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// DistributionRepository implements usecase.DistributionRepository.
// The full waterfall result is kept as JSONB; per-investor amounts are
// also written to distribution_allocations for reconciliation queries.
type DistributionRepository struct {
	db querier
}

// NewDistributionRepository creates a new DistributionRepository.
func NewDistributionRepository(pool *pgxpool.Pool) *DistributionRepository {
	return newDistributionRepository(pool)
}

func newDistributionRepository(db querier) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// Create inserts a distribution and its investor allocations.
func (r *DistributionRepository) Create(ctx context.Context, tx usecase.Transaction, dist *domain.Distribution) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	result, err := json.Marshal(dist.Result)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO distributions
		(id, fund_id, proceeds, gp_carry, distributed, residual, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		dist.ID,
		dist.FundID,
		decimalToNumeric(dist.Proceeds),
		decimalToNumeric(dist.Result.GPCarry),
		decimalToNumeric(dist.Result.TotalDistributed),
		decimalToNumeric(dist.Result.RoundingResidual),
		result,
		dist.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, inv := range dist.Result.Investors {
		_, err = q.Exec(ctx, `INSERT INTO distribution_allocations (distribution_id, investor_id, amount)
			VALUES ($1, $2, $3)`,
			dist.ID,
			inv.InvestorID,
			decimalToNumeric(inv.Amount),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a distribution by ID.
func (r *DistributionRepository) GetByID(ctx context.Context, id string) (*domain.Distribution, error) {
	row := r.db.QueryRow(ctx, `SELECT id, fund_id, proceeds, result, created_at
		FROM distributions WHERE id = $1`, id)

	dist, err := scanDistribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDistributionNotFound
		}

		return nil, err
	}

	return dist, nil
}

// ListByFund lists distributions of a fund, newest first.
func (r *DistributionRepository) ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.Distribution, error) {
	rows, err := r.db.Query(ctx, `SELECT id, fund_id, proceeds, result, created_at
		FROM distributions WHERE fund_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, fundID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dists := make([]*domain.Distribution, 0)
	for rows.Next() {
		dist, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		dists = append(dists, dist)
	}

	return dists, rows.Err()
}

// SumByInvestor totals distributed amounts per investor of a fund.
func (r *DistributionRepository) SumByInvestor(ctx context.Context, fundID string) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `SELECT a.investor_id, SUM(a.amount)
		FROM distribution_allocations a
		JOIN distributions d ON d.id = a.distribution_id
		WHERE d.fund_id = $1
		GROUP BY a.investor_id`, fundID)
	if err != nil {
		return nil, err
	}

	return sumByInvestor(rows)
}

func scanDistribution(row pgx.Row) (*domain.Distribution, error) {
	var (
		dist     domain.Distribution
		proceeds pgtype.Numeric
		result   []byte
	)

	if err := row.Scan(&dist.ID, &dist.FundID, &proceeds, &result, &dist.CreatedAt); err != nil {
		return nil, err
	}

	dist.Proceeds = numericToDecimal(proceeds)
	if err := json.Unmarshal(result, &dist.Result); err != nil {
		return nil, err
	}

	return &dist, nil
}
