package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestorCommitment is the immutable slice of an investor the engine works with.
type InvestorCommitment struct {
	InvestorID string
	Name       string
	Commitment decimal.Decimal
}

// InvestorRecord is everything the attribution calculator needs about one investor.
type InvestorRecord struct {
	InvestorID            string
	Domicile              string
	Commitment            decimal.Decimal
	CalledCapital         decimal.Decimal
	DistributionsReceived decimal.Decimal
	OnboardedAt           time.Time
	// EffectiveTaxRatePct overrides the default tax rate when set.
	EffectiveTaxRatePct *decimal.Decimal
}

// Investor is a limited partner registered in a fund.
type Investor struct {
	ID                    string
	FundID                string
	Name                  string
	Domicile              string
	Commitment            decimal.Decimal
	CalledCapital         decimal.Decimal
	DistributionsReceived decimal.Decimal
	EffectiveTaxRatePct   *decimal.Decimal
	OnboardedAt           time.Time
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Unfunded returns the commitment not yet called.
func (i *Investor) Unfunded() decimal.Decimal {
	unfunded := i.Commitment.Sub(i.CalledCapital)
	if unfunded.IsNegative() {
		return decimal.Zero
	}
	return unfunded
}

// ValidateCall checks the investor can fund the given allocation.
func (i *Investor) ValidateCall(amount decimal.Decimal) error {
	if amount.GreaterThan(i.Unfunded()) {
		return ErrCallExceedsUnfunded
	}
	return nil
}

// ApplyCall returns the called capital after funding amount.
func (i *Investor) ApplyCall(amount decimal.Decimal) decimal.Decimal {
	return i.CalledCapital.Add(amount)
}

// ApplyDistribution returns the distributions received after amount is paid out.
func (i *Investor) ApplyDistribution(amount decimal.Decimal) decimal.Decimal {
	return i.DistributionsReceived.Add(amount)
}

// ToCommitment projects the investor onto the engine's commitment shape.
func (i *Investor) ToCommitment() InvestorCommitment {
	return InvestorCommitment{
		InvestorID: i.ID,
		Name:       i.Name,
		Commitment: i.Commitment,
	}
}

// ToRecord projects the investor onto the attribution input shape.
func (i *Investor) ToRecord() InvestorRecord {
	return InvestorRecord{
		InvestorID:            i.ID,
		Domicile:              i.Domicile,
		Commitment:            i.Commitment,
		CalledCapital:         i.CalledCapital,
		DistributionsReceived: i.DistributionsReceived,
		OnboardedAt:           i.OnboardedAt,
		EffectiveTaxRatePct:   i.EffectiveTaxRatePct,
	}
}

// Commitments projects a list of investors onto commitments, preserving order.
func Commitments(investors []*Investor) []InvestorCommitment {
	result := make([]InvestorCommitment, len(investors))
	for i, inv := range investors {
		result[i] = inv.ToCommitment()
	}
	return result
}

// TotalUnfunded sums the unfunded commitment of every investor.
func TotalUnfunded(investors []*Investor) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investors {
		total = total.Add(inv.Unfunded())
	}
	return total
}
