package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iho/fundflow/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, got.Equal(d(want)), "expected %s, got %s %v", want, got.String(), msgAndArgs)
}

func commitments(pairs ...string) []domain.InvestorCommitment {
	result := make([]domain.InvestorCommitment, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		result = append(result, domain.InvestorCommitment{
			InvestorID: pairs[i],
			Name:       "Investor " + pairs[i],
			Commitment: d(pairs[i+1]),
		})
	}
	return result
}
