package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundflow/internal/domain"
)

var attributionAsOf = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

func oneYearRecord(domicile string) domain.InvestorRecord {
	return domain.InvestorRecord{
		InvestorID:            "inv-1",
		Domicile:              domicile,
		Commitment:            d("10"),
		CalledCapital:         d("10"),
		DistributionsReceived: decimal.Zero,
		OnboardedAt:           attributionAsOf.AddDate(-1, 0, 0),
	}
}

func TestCalculateAttribution_UnrealizedOnly(t *testing.T) {
	m := CalculateAttribution(oneYearRecord("Cayman Islands"), attributionAsOf, nil)

	assert.Equal(t, "inv-1", m.InvestorID)
	assert.InDelta(t, 1.0, m.AgeYears, 1e-9)
	assertDecimal(t, "11", m.NAV)
	assertDecimal(t, "0", m.DPI)
	assertDecimal(t, "1.1", m.RVPI)
	assertDecimal(t, "1.1", m.TVPI)
	assert.True(t, m.MOIC.Equal(m.TVPI))

	assertDecimal(t, "10", m.GrossIRR)
	// 2% fee drag plus 20% of the 2 points above the hurdle
	assertDecimal(t, "7.6", m.NetIRR)
	assertDecimal(t, "0", m.WithholdingRatePct)
	assertDecimal(t, "7.6", m.WithholdingIRR)
	assertDecimal(t, "20", m.EffectiveTaxRatePct)
	assertDecimal(t, "6.08", m.AfterTaxIRR)
}

func TestCalculateAttribution_WithholdingApplied(t *testing.T) {
	m := CalculateAttribution(oneYearRecord("US"), attributionAsOf, nil)

	assertDecimal(t, "30", m.WithholdingRatePct)
	assertDecimal(t, "5.32", m.WithholdingIRR)
	assertDecimal(t, "4.26", m.AfterTaxIRR)
}

func TestCalculateAttribution_HurdleOverride(t *testing.T) {
	zero := decimal.Zero
	m := CalculateAttribution(oneYearRecord("KY"), attributionAsOf, &zero)

	assertDecimal(t, "6", m.NetIRR)

	high := d("15")
	m = CalculateAttribution(oneYearRecord("KY"), attributionAsOf, &high)
	assertDecimal(t, "8", m.NetIRR)
}

func TestCalculateAttribution_ExplicitTaxRate(t *testing.T) {
	record := oneYearRecord("KY")
	rate := d("50")
	record.EffectiveTaxRatePct = &rate

	m := CalculateAttribution(record, attributionAsOf, nil)

	assertDecimal(t, "50", m.EffectiveTaxRatePct)
	assertDecimal(t, "3.8", m.AfterTaxIRR)
}

func TestCalculateAttribution_NothingCalled(t *testing.T) {
	record := oneYearRecord("US")
	record.CalledCapital = decimal.Zero

	m := CalculateAttribution(record, attributionAsOf, nil)

	for name, v := range map[string]decimal.Decimal{
		"nav": m.NAV, "dpi": m.DPI, "rvpi": m.RVPI, "tvpi": m.TVPI, "moic": m.MOIC,
		"gross": m.GrossIRR, "net": m.NetIRR, "withholding": m.WithholdingIRR, "after tax": m.AfterTaxIRR,
	} {
		assert.True(t, v.IsZero(), "%s should be zero, got %s", name, v)
	}
}

func TestCalculateAttribution_AgeClamped(t *testing.T) {
	a := NewAttributor(DefaultAttributionConfig())

	young := oneYearRecord("KY")
	young.OnboardedAt = attributionAsOf.AddDate(0, -1, 0)
	assert.Equal(t, 1.0, a.Calculate(young, attributionAsOf).AgeYears)

	old := oneYearRecord("KY")
	old.OnboardedAt = attributionAsOf.AddDate(-30, 0, 0)
	assert.Equal(t, 12.0, a.Calculate(old, attributionAsOf).AgeYears)

	unknown := oneYearRecord("KY")
	unknown.OnboardedAt = time.Time{}
	assert.Equal(t, 1.0, a.Calculate(unknown, attributionAsOf).AgeYears)

	mid := oneYearRecord("KY")
	mid.OnboardedAt = attributionAsOf.Add(-time.Duration(3 * hoursPerYear * float64(time.Hour)))
	assert.InDelta(t, 3.0, a.Calculate(mid, attributionAsOf).AgeYears, 1e-6)
}

func TestCalculateAttribution_TotalLossStaysFinite(t *testing.T) {
	cfg := DefaultAttributionConfig()
	cfg.NAVMarkupPct = 0
	a := NewAttributor(cfg)

	record := oneYearRecord("KY")
	record.DistributionsReceived = d("10")

	m := a.Calculate(record, attributionAsOf)

	assertDecimal(t, "0", m.NAV)
	assertDecimal(t, "1", m.DPI)
	assertDecimal(t, "0", m.RVPI)
	assertDecimal(t, "1", m.TVPI)
	assertDecimal(t, "0", m.GrossIRR)
}

func TestCalculateAttribution_Identities(t *testing.T) {
	a := NewAttributor(DefaultAttributionConfig())
	domiciles := []string{"US", "Germany", "Cayman Islands", "Atlantis", ""}
	called := []string{"0", "0.01", "10", "333.33", "1000000"}
	distributed := []string{"0", "1", "7.77", "500", "2500000"}
	ages := []int{0, 1, 3, 7, 20}

	for _, dom := range domiciles {
		for _, c := range called {
			for _, dist := range distributed {
				for _, years := range ages {
					record := domain.InvestorRecord{
						InvestorID:            "inv",
						Domicile:              dom,
						Commitment:            d("1000000"),
						CalledCapital:         d(c),
						DistributionsReceived: d(dist),
						OnboardedAt:           attributionAsOf.AddDate(-years, 0, 0),
					}
					m := a.Calculate(record, attributionAsOf)

					assert.True(t, m.DPI.Add(m.RVPI).Equal(m.TVPI), "dpi+rvpi != tvpi for %+v", record)
					assert.True(t, m.MOIC.Equal(m.TVPI))
					assert.False(t, m.NAV.IsNegative())
					assert.True(t, m.NetIRR.LessThanOrEqual(m.GrossIRR), "net above gross for %+v", record)
					assert.GreaterOrEqual(t, m.AgeYears, 1.0)
					assert.LessOrEqual(t, m.AgeYears, 12.0)
				}
			}
		}
	}
}

func TestAttributor_CalculateFund(t *testing.T) {
	a := NewAttributor(DefaultAttributionConfig())
	records := []domain.InvestorRecord{
		oneYearRecord("KY"),
		{
			InvestorID:            "inv-2",
			Domicile:              "US",
			Commitment:            d("30"),
			CalledCapital:         d("20"),
			DistributionsReceived: d("5"),
			OnboardedAt:           attributionAsOf.AddDate(-1, 0, 0),
		},
	}

	fa := a.CalculateFund("fund-1", records, attributionAsOf)

	require.Len(t, fa.Investors, 2)
	assert.Equal(t, "fund-1", fa.FundID)
	assertDecimal(t, "40", fa.TotalCommitted)
	assertDecimal(t, "30", fa.TotalCalled)
	assertDecimal(t, "5", fa.TotalDistributed)
	// 11 + (20 - 5 + 2)
	assertDecimal(t, "28", fa.TotalNAV)
	assertDecimal(t, "0.1667", fa.DPI)
	assertDecimal(t, "0.9333", fa.RVPI)
	assert.True(t, fa.DPI.Add(fa.RVPI).Equal(fa.TVPI))
}

func TestAttributor_CalculateFundEmpty(t *testing.T) {
	fa := NewAttributor(DefaultAttributionConfig()).CalculateFund("fund-1", nil, attributionAsOf)

	assert.Empty(t, fa.Investors)
	assert.True(t, fa.TVPI.IsZero())
	assert.True(t, fa.TotalNAV.IsZero())
}

func TestAttributionConfig_Fingerprint(t *testing.T) {
	base := DefaultAttributionConfig()
	assert.Equal(t, base.Fingerprint(), DefaultAttributionConfig().Fingerprint())

	changed := base
	changed.CarryRatePct = 25
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())

	changed = base
	changed.NAVMarkupPct = 12
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())
}
