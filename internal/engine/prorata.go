package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

// weightsOf extracts commitments as weights, treating negative commitments as zero.
func weightsOf(commitments []domain.InvestorCommitment) ([]decimal.Decimal, decimal.Decimal) {
	weights := make([]decimal.Decimal, len(commitments))
	sum := decimal.Zero
	for i, c := range commitments {
		w := c.Commitment
		if w.IsNegative() {
			w = decimal.Zero
		}
		weights[i] = w
		sum = sum.Add(w)
	}
	return weights, sum
}

// splitRounded splits amount pro rata and rounds every share on its own.
// Each share is monotone in amount and equal weights get equal shares, but
// the shares may miss amount by up to half a cent per weight.
func splitRounded(amount decimal.Decimal, weights []decimal.Decimal, sum decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	for i := range weights {
		shares[i] = decimal.Zero
		if sum.Sign() <= 0 || amount.Sign() <= 0 {
			continue
		}
		shares[i] = domain.RoundMoney(amount.Mul(weights[i]).Div(sum))
	}
	return shares
}

// splitLargestRemainder splits amount pro rata in whole cents.
//
// Every share starts at the floor of its exact value. Leftover cents are then
// handed out one per weight in descending order of fractional remainder, a
// whole group of equal remainders at a time. The first group that cannot be
// served in full ends the pass, so equal weights always receive equal shares
// and the total misses amount by fewer cents than there are weights.
func splitLargestRemainder(amount decimal.Decimal, weights []decimal.Decimal, sum decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	for i := range shares {
		shares[i] = decimal.Zero
	}

	if sum.Sign() <= 0 || amount.Sign() <= 0 {
		return shares
	}

	units := domain.RoundMoney(amount).Shift(domain.CurrencyPrecision)

	floors := make([]decimal.Decimal, len(weights))
	remainders := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		exact := units.Mul(w).Div(sum)
		floors[i] = exact.Floor()
		remainders[i] = exact.Sub(floors[i])
		allocated = allocated.Add(floors[i])
	}

	leftover := units.Sub(allocated).IntPart()

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	for start := 0; start < len(order) && leftover > 0; {
		rem := remainders[order[start]]
		if !rem.IsPositive() {
			break
		}

		end := start + 1
		for end < len(order) && remainders[order[end]].Equal(rem) {
			end++
		}

		group := int64(end - start)
		if group > leftover {
			break
		}

		for _, idx := range order[start:end] {
			floors[idx] = floors[idx].Add(decimal.NewFromInt(1))
		}
		leftover -= group
		start = end
	}

	for i := range shares {
		shares[i] = floors[i].Shift(-domain.CurrencyPrecision)
	}

	return shares
}
