package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/fundflow/internal/domain"
)

// feeOffsetFactor scales carry in the residual tier when management fees are offset.
var feeOffsetFactor = decimal.RequireFromString("0.9")

// CalculateWaterfall runs the four-tier distribution waterfall.
//
// Tiers run strictly in order, each drawing from the proceeds left by the
// previous one: return of capital, preferred return, manager catch-up and the
// residual carried-interest split. Every tier amount is rounded to currency
// precision before it is taken out of the pool, so the tiers always sum to the
// (clamped) proceeds exactly. Investor-facing tier portions are then split pro
// rata by commitment with independent rounding; the few cents this can leave
// over are reported in RoundingResidual.
//
// A catch-up percentage of zero makes tier 3 distribute nothing and leaves the
// pool untouched for tier 4. Negative proceeds are clamped to zero.
func CalculateWaterfall(in domain.WaterfallInput) domain.WaterfallOutput {
	proceeds := domain.RoundMoney(in.TotalProceeds)
	if proceeds.IsNegative() {
		proceeds = decimal.Zero
	}

	weights, sum := weightsOf(in.Commitments)
	committed := domain.RoundMoney(sum)

	pref := clampFraction(in.PreferredReturnPct)
	carry := clampFraction(in.CarriedInterestPct)
	catchUp := clampFraction(in.CatchUpPct)

	adjustedCarry := carry
	if in.ManagementFeeOffset {
		adjustedCarry = carry.Mul(feeOffsetFactor)
	}

	remaining := proceeds
	investorsSoFar := decimal.Zero
	managerSoFar := decimal.Zero

	// Tier 1: return of capital.
	roc := decimal.Min(remaining, committed)
	remaining = remaining.Sub(roc)
	investorsSoFar = investorsSoFar.Add(roc)

	// Tier 2: preferred return, single period so (1+r)^1 - 1 reduces to r.
	prefTarget := domain.RoundMoney(committed.Mul(pref))
	prefPaid := decimal.Min(remaining, prefTarget)
	remaining = remaining.Sub(prefPaid)
	investorsSoFar = investorsSoFar.Add(prefPaid)

	// Tier 3: catch-up until the manager holds its carry share of profit.
	catchUpPaid, catchUpManager := decimal.Zero, decimal.Zero
	if catchUp.IsPositive() && remaining.IsPositive() {
		profitSoFar := decimal.Max(decimal.Zero, investorsSoFar.Sub(committed))
		consumable := remaining
		if carry.LessThan(decimal.NewFromInt(1)) {
			catchUpCap := carry.Mul(profitSoFar).Div(decimal.NewFromInt(1).Sub(carry)).Sub(managerSoFar)
			catchUpCap = decimal.Max(decimal.Zero, catchUpCap)
			consumable = domain.RoundMoney(catchUpCap.Div(catchUp))
		}
		catchUpPaid = decimal.Min(remaining, consumable)
		catchUpManager = domain.RoundMoney(catchUpPaid.Mul(catchUp))
	}
	catchUpInvestors := catchUpPaid.Sub(catchUpManager)
	remaining = remaining.Sub(catchUpPaid)
	investorsSoFar = investorsSoFar.Add(catchUpInvestors)
	managerSoFar = managerSoFar.Add(catchUpManager)

	// Tier 4: everything left is split by the (possibly offset) carry rate.
	residual := remaining
	residualManager := domain.RoundMoney(residual.Mul(adjustedCarry))
	residualInvestors := residual.Sub(residualManager)
	managerSoFar = managerSoFar.Add(residualManager)

	tiers := []domain.WaterfallTier{
		{
			Sequence:        domain.TierReturnOfCapital,
			Name:            "Return of Capital",
			Description:     fmt.Sprintf("100%% to investors until committed capital of %s is returned", committed.StringFixed(domain.CurrencyPrecision)),
			Recipient:       domain.RecipientInvestors,
			Amount:          roc,
			InvestorAmount:  roc,
			ManagerAmount:   decimal.Zero,
			ManagerSplitPct: decimal.Zero,
		},
		{
			Sequence:        domain.TierPreferredReturn,
			Name:            "Preferred Return",
			Description:     fmt.Sprintf("100%% to investors until a %s%% preferred return of %s is paid", in.PreferredReturnPct.String(), prefTarget.StringFixed(domain.CurrencyPrecision)),
			Recipient:       domain.RecipientInvestors,
			Amount:          prefPaid,
			InvestorAmount:  prefPaid,
			ManagerAmount:   decimal.Zero,
			ManagerSplitPct: decimal.Zero,
		},
		{
			Sequence:        domain.TierCatchUp,
			Name:            "Manager Catch-Up",
			Description:     fmt.Sprintf("%s%% to the manager until it holds %s%% of profits", catchUp.Mul(domain.Hundred).String(), carry.Mul(domain.Hundred).String()),
			Recipient:       recipientFor(catchUp),
			Amount:          catchUpPaid,
			InvestorAmount:  catchUpInvestors,
			ManagerAmount:   catchUpManager,
			ManagerSplitPct: catchUp.Mul(domain.Hundred),
		},
		{
			Sequence:        domain.TierCarriedInterest,
			Name:            "Carried Interest Split",
			Description:     fmt.Sprintf("%s%% to the manager, remainder to investors", adjustedCarry.Mul(domain.Hundred).String()),
			Recipient:       recipientFor(adjustedCarry),
			Amount:          residual,
			InvestorAmount:  residualInvestors,
			ManagerAmount:   residualManager,
			ManagerSplitPct: adjustedCarry.Mul(domain.Hundred),
		},
	}

	investors := distributeToInvestors(in.Commitments, weights, sum, tiers)

	totalDistributed := managerSoFar
	for _, inv := range investors {
		totalDistributed = totalDistributed.Add(inv.Amount)
	}

	return domain.WaterfallOutput{
		Tiers:            tiers,
		Investors:        investors,
		TotalProceeds:    proceeds,
		GPCarry:          managerSoFar,
		TotalDistributed: totalDistributed,
		RoundingResidual: proceeds.Sub(totalDistributed),
	}
}

func distributeToInvestors(
	commitments []domain.InvestorCommitment,
	weights []decimal.Decimal,
	sum decimal.Decimal,
	tiers []domain.WaterfallTier,
) []domain.InvestorDistribution {
	result := make([]domain.InvestorDistribution, len(commitments))
	for i, c := range commitments {
		result[i] = domain.InvestorDistribution{
			InvestorID:  c.InvestorID,
			Name:        c.Name,
			Commitment:  c.Commitment,
			Amount:      decimal.Zero,
			TierAmounts: make([]decimal.Decimal, len(tiers)),
		}
	}

	for t, tier := range tiers {
		shares := splitRounded(tier.InvestorAmount, weights, sum)
		for i := range result {
			result[i].TierAmounts[t] = shares[i]
			result[i].Amount = result[i].Amount.Add(shares[i])
		}
	}

	for i := range result {
		result[i].EffectiveReturnPct = effectiveReturn(result[i].Amount, weights[i])
	}

	return result
}

// effectiveReturn is the investor's gain over commitment in percent, never negative.
func effectiveReturn(amount, commitment decimal.Decimal) decimal.Decimal {
	if !commitment.IsPositive() {
		return decimal.Zero
	}
	gain := decimal.Max(decimal.Zero, amount.Sub(commitment))
	return gain.Mul(domain.Hundred).DivRound(commitment, domain.CurrencyPrecision)
}

func recipientFor(managerShare decimal.Decimal) domain.TierRecipient {
	switch {
	case managerShare.IsZero():
		return domain.RecipientInvestors
	case managerShare.Equal(decimal.NewFromInt(1)):
		return domain.RecipientManager
	default:
		return domain.RecipientSplit
	}
}

// clampFraction turns a percentage into a fraction in [0, 1].
func clampFraction(pct decimal.Decimal) decimal.Decimal {
	f := domain.PctToFraction(pct)
	if f.IsNegative() {
		return decimal.Zero
	}
	if f.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return f
}
