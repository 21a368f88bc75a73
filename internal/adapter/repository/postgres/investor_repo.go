package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

const investorColumns = `id, fund_id, name, domicile, commitment, called_capital,
	distributions_received, effective_tax_rate_pct, onboarded_at, version, created_at, updated_at`

// InvestorRepository implements usecase.InvestorRepository.
type InvestorRepository struct {
	db querier
}

// NewInvestorRepository creates a new InvestorRepository.
func NewInvestorRepository(pool *pgxpool.Pool) *InvestorRepository {
	return newInvestorRepository(pool)
}

func newInvestorRepository(db querier) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// Create inserts an investor. A second investor with the same name in a fund is rejected.
func (r *InvestorRepository) Create(ctx context.Context, tx usecase.Transaction, investor *domain.Investor) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO investors (`+investorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		investor.ID,
		investor.FundID,
		investor.Name,
		investor.Domicile,
		decimalToNumeric(investor.Commitment),
		decimalToNumeric(investor.CalledCapital),
		decimalToNumeric(investor.DistributionsReceived),
		optionalNumeric(investor.EffectiveTaxRatePct),
		investor.OnboardedAt,
		investor.Version,
		investor.CreatedAt,
		investor.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInvestor
	}

	return err
}

// GetByID retrieves an investor by ID.
func (r *InvestorRepository) GetByID(ctx context.Context, id string) (*domain.Investor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+investorColumns+` FROM investors WHERE id = $1`, id)

	investor, err := scanInvestor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestorNotFound
		}

		return nil, err
	}

	return investor, nil
}

// ListByFund lists investors of a fund with pagination.
func (r *InvestorRepository) ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.Investor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+investorColumns+` FROM investors
		WHERE fund_id = $1 ORDER BY id LIMIT $2 OFFSET $3`, fundID, limit, offset)
	if err != nil {
		return nil, err
	}

	return collectInvestors(rows)
}

// ListAllByFund returns every investor of a fund ordered by id.
func (r *InvestorRepository) ListAllByFund(ctx context.Context, fundID string) ([]*domain.Investor, error) {
	rows, err := r.db.Query(ctx, `SELECT `+investorColumns+` FROM investors
		WHERE fund_id = $1 ORDER BY id`, fundID)
	if err != nil {
		return nil, err
	}

	return collectInvestors(rows)
}

// ListByFundForUpdate locks every investor row of a fund. Rows are locked in id
// order so concurrent calls and distributions on the same fund cannot deadlock.
func (r *InvestorRepository) ListByFundForUpdate(ctx context.Context, tx usecase.Transaction, fundID string) ([]*domain.Investor, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `SELECT `+investorColumns+` FROM investors
		WHERE fund_id = $1 ORDER BY id FOR UPDATE`, fundID)
	if err != nil {
		return nil, err
	}

	return collectInvestors(rows)
}

// UpdateCapital persists running balances. The stored version must be exactly
// one behind the new version.
func (r *InvestorRepository) UpdateCapital(ctx context.Context, tx usecase.Transaction, investor *domain.Investor) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, `UPDATE investors
		SET called_capital = $2, distributions_received = $3, version = $4, updated_at = $5
		WHERE id = $1 AND version = $4 - 1`,
		investor.ID,
		decimalToNumeric(investor.CalledCapital),
		decimalToNumeric(investor.DistributionsReceived),
		investor.Version,
		investor.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvestorNotFound
	}

	return nil
}

func collectInvestors(rows pgx.Rows) ([]*domain.Investor, error) {
	defer rows.Close()

	investors := make([]*domain.Investor, 0)
	for rows.Next() {
		investor, err := scanInvestor(rows)
		if err != nil {
			return nil, err
		}
		investors = append(investors, investor)
	}

	return investors, rows.Err()
}

func scanInvestor(row pgx.Row) (*domain.Investor, error) {
	var (
		inv                               domain.Investor
		commitment, called, distributions pgtype.Numeric
		taxRate                           pgtype.Numeric
	)

	err := row.Scan(
		&inv.ID,
		&inv.FundID,
		&inv.Name,
		&inv.Domicile,
		&commitment,
		&called,
		&distributions,
		&taxRate,
		&inv.OnboardedAt,
		&inv.Version,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Commitment = numericToDecimal(commitment)
	inv.CalledCapital = numericToDecimal(called)
	inv.DistributionsReceived = numericToDecimal(distributions)
	inv.EffectiveTaxRatePct = numericToOptional(taxRate)

	return &inv, nil
}
