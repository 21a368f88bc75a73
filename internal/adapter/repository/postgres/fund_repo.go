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

const fundColumns = `id, name, currency, preferred_return_pct, carried_interest_pct,
	catch_up_pct, hurdle_rate_pct, management_fee_offset, created_at, updated_at`

// FundRepository implements usecase.FundRepository.
type FundRepository struct {
	db querier
}

// NewFundRepository creates a new FundRepository.
func NewFundRepository(pool *pgxpool.Pool) *FundRepository {
	return newFundRepository(pool)
}

func newFundRepository(db querier) *FundRepository {
	return &FundRepository{db: db}
}

// Create inserts a fund within a transaction.
func (r *FundRepository) Create(ctx context.Context, tx usecase.Transaction, fund *domain.Fund) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO funds (`+fundColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		fund.ID,
		fund.Name,
		fund.Currency,
		decimalToNumeric(fund.Terms.PreferredReturnPct),
		decimalToNumeric(fund.Terms.CarriedInterestPct),
		decimalToNumeric(fund.Terms.CatchUpPct),
		decimalToNumeric(fund.Terms.HurdleRatePct),
		fund.Terms.ManagementFeeOffset,
		fund.CreatedAt,
		fund.UpdatedAt,
	)

	return err
}

// GetByID retrieves a fund by ID.
func (r *FundRepository) GetByID(ctx context.Context, id string) (*domain.Fund, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fundColumns+` FROM funds WHERE id = $1`, id)

	fund, err := scanFund(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFundNotFound
		}

		return nil, err
	}

	return fund, nil
}

// List lists funds with pagination, oldest first.
func (r *FundRepository) List(ctx context.Context, limit, offset int) ([]*domain.Fund, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fundColumns+` FROM funds
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funds := make([]*domain.Fund, 0)
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, err
		}
		funds = append(funds, fund)
	}

	return funds, rows.Err()
}

func scanFund(row pgx.Row) (*domain.Fund, error) {
	var (
		fund                          domain.Fund
		preferred, carry, catchUp, hr pgtype.Numeric
	)

	err := row.Scan(
		&fund.ID,
		&fund.Name,
		&fund.Currency,
		&preferred,
		&carry,
		&catchUp,
		&hr,
		&fund.Terms.ManagementFeeOffset,
		&fund.CreatedAt,
		&fund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fund.Terms.PreferredReturnPct = numericToDecimal(preferred)
	fund.Terms.CarriedInterestPct = numericToDecimal(carry)
	fund.Terms.CatchUpPct = numericToDecimal(catchUp)
	fund.Terms.HurdleRatePct = numericToDecimal(hr)

	return &fund, nil
}
