package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierRecipient says who a waterfall tier pays.
type TierRecipient string

const (
	RecipientInvestors TierRecipient = "investors"
	RecipientManager   TierRecipient = "manager"
	RecipientSplit     TierRecipient = "split"
)

// Tier sequence numbers. Tiers always run in this order.
const (
	TierReturnOfCapital = iota + 1
	TierPreferredReturn
	TierCatchUp
	TierCarriedInterest
)

// WaterfallInput is everything needed to run one distribution waterfall.
type WaterfallInput struct {
	TotalProceeds       decimal.Decimal
	PreferredReturnPct  decimal.Decimal
	CarriedInterestPct  decimal.Decimal
	CatchUpPct          decimal.Decimal
	ManagementFeeOffset bool
	Commitments         []InvestorCommitment
}

// WaterfallTier records what one tier of the waterfall paid out.
type WaterfallTier struct {
	Sequence       int
	Name           string
	Description    string
	Recipient      TierRecipient
	Amount         decimal.Decimal
	InvestorAmount decimal.Decimal
	ManagerAmount  decimal.Decimal
	// ManagerSplitPct is the manager's share of the tier in percent.
	ManagerSplitPct decimal.Decimal
}

// InvestorDistribution is one investor's total take from a waterfall.
type InvestorDistribution struct {
	InvestorID         string
	Name               string
	Commitment         decimal.Decimal
	Amount             decimal.Decimal
	EffectiveReturnPct decimal.Decimal
	// TierAmounts holds the investor's share of each tier, indexed by Sequence-1.
	TierAmounts []decimal.Decimal
}

// WaterfallOutput is the full result of a waterfall run.
type WaterfallOutput struct {
	Tiers            []WaterfallTier
	Investors        []InvestorDistribution
	TotalProceeds    decimal.Decimal
	GPCarry          decimal.Decimal
	TotalDistributed decimal.Decimal
	// RoundingResidual is TotalProceeds - TotalDistributed, a few cents at most.
	RoundingResidual decimal.Decimal
}

// InvestorTotal sums what investors received.
func (o *WaterfallOutput) InvestorTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inv := range o.Investors {
		total = total.Add(inv.Amount)
	}
	return total
}

// AmountFor returns the distribution for one investor, zero if absent.
func (o *WaterfallOutput) AmountFor(investorID string) decimal.Decimal {
	for _, inv := range o.Investors {
		if inv.InvestorID == investorID {
			return inv.Amount
		}
	}
	return decimal.Zero
}

// Distribution is an executed waterfall distribution of fund proceeds.
type Distribution struct {
	ID        string
	FundID    string
	Proceeds  decimal.Decimal
	Result    WaterfallOutput
	CreatedAt time.Time
}
