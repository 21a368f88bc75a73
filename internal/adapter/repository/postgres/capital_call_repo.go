package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/usecase"
)

// CapitalCallRepository implements usecase.CapitalCallRepository.
type CapitalCallRepository struct {
	db querier
}

// NewCapitalCallRepository creates a new CapitalCallRepository.
func NewCapitalCallRepository(pool *pgxpool.Pool) *CapitalCallRepository {
	return newCapitalCallRepository(pool)
}

func newCapitalCallRepository(db querier) *CapitalCallRepository {
	return &CapitalCallRepository{db: db}
}

// Create inserts a capital call and its per-investor allocations.
func (r *CapitalCallRepository) Create(ctx context.Context, tx usecase.Transaction, call *domain.CapitalCall) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `INSERT INTO capital_calls (id, fund_id, amount, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		call.ID,
		call.FundID,
		decimalToNumeric(call.Amount),
		optionalTimestamptz(call.DueDate),
		call.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, alloc := range call.Allocations {
		_, err = q.Exec(ctx, `INSERT INTO capital_call_allocations (capital_call_id, investor_id, amount, share_pct)
			VALUES ($1, $2, $3, $4)`,
			call.ID,
			alloc.InvestorID,
			decimalToNumeric(alloc.Amount),
			decimalToNumeric(alloc.SharePct),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a capital call with its allocations.
func (r *CapitalCallRepository) GetByID(ctx context.Context, id string) (*domain.CapitalCall, error) {
	row := r.db.QueryRow(ctx, `SELECT id, fund_id, amount, due_date, created_at
		FROM capital_calls WHERE id = $1`, id)

	call, err := scanCapitalCall(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCapitalCallNotFound
		}

		return nil, err
	}

	if err := r.attachAllocations(ctx, []*domain.CapitalCall{call}); err != nil {
		return nil, err
	}

	return call, nil
}

// ListByFund lists capital calls of a fund, newest first.
func (r *CapitalCallRepository) ListByFund(ctx context.Context, fundID string, limit, offset int) ([]*domain.CapitalCall, error) {
	rows, err := r.db.Query(ctx, `SELECT id, fund_id, amount, due_date, created_at
		FROM capital_calls WHERE fund_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, fundID, limit, offset)
	if err != nil {
		return nil, err
	}

	calls, err := collectCapitalCalls(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachAllocations(ctx, calls); err != nil {
		return nil, err
	}

	return calls, nil
}

// SumAllocationsByInvestor totals allocated call amounts per investor of a fund.
func (r *CapitalCallRepository) SumAllocationsByInvestor(ctx context.Context, fundID string) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `SELECT a.investor_id, SUM(a.amount)
		FROM capital_call_allocations a
		JOIN capital_calls c ON c.id = a.capital_call_id
		WHERE c.fund_id = $1
		GROUP BY a.investor_id`, fundID)
	if err != nil {
		return nil, err
	}

	return sumByInvestor(rows)
}

func (r *CapitalCallRepository) attachAllocations(ctx context.Context, calls []*domain.CapitalCall) error {
	if len(calls) == 0 {
		return nil
	}

	ids := make([]string, 0, len(calls))
	byID := make(map[string]*domain.CapitalCall, len(calls))
	for _, call := range calls {
		ids = append(ids, call.ID)
		byID[call.ID] = call
	}

	rows, err := r.db.Query(ctx, `SELECT capital_call_id, investor_id, amount, share_pct
		FROM capital_call_allocations WHERE capital_call_id = ANY($1)
		ORDER BY capital_call_id, investor_id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			callID, investorID string
			amount, share      pgtype.Numeric
		)
		if err := rows.Scan(&callID, &investorID, &amount, &share); err != nil {
			return err
		}

		if call, ok := byID[callID]; ok {
			call.Allocations = append(call.Allocations, domain.CapitalCallAllocation{
				InvestorID: investorID,
				Amount:     numericToDecimal(amount),
				SharePct:   numericToDecimal(share),
			})
		}
	}

	return rows.Err()
}

func collectCapitalCalls(rows pgx.Rows) ([]*domain.CapitalCall, error) {
	defer rows.Close()

	calls := make([]*domain.CapitalCall, 0)
	for rows.Next() {
		call, err := scanCapitalCall(rows)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

func scanCapitalCall(row pgx.Row) (*domain.CapitalCall, error) {
	var (
		call    domain.CapitalCall
		amount  pgtype.Numeric
		dueDate pgtype.Timestamptz
	)

	if err := row.Scan(&call.ID, &call.FundID, &amount, &dueDate, &call.CreatedAt); err != nil {
		return nil, err
	}

	call.Amount = numericToDecimal(amount)
	call.DueDate = timestamptzToOptional(dueDate)

	return &call, nil
}
