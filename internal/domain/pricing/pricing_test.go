package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, in, out time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	return dr
}

func TestQuoteReferenceScenario(t *testing.T) {
	// Base price 1000.00, 3 nights: subtotal 3000, service fee 300,
	// cleaning 50, taxes 360, total 3710.
	calc := pricing.NewCalculator(pricing.DefaultFeeSchedule())
	breakdown, err := calc.Quote(money.Must(100000, "USD"), mustRange(t, date(2026, 6, 1), date(2026, 6, 4)))
	require.NoError(t, err)

	assert.Equal(t, 3, breakdown.Nights)
	assert.Equal(t, int64(300000), breakdown.Subtotal.Amount)
	assert.Equal(t, int64(30000), breakdown.ServiceFee.Amount)
	assert.Equal(t, int64(5000), breakdown.CleaningFee.Amount)
	assert.Equal(t, int64(36000), breakdown.Taxes.Amount)
	assert.Equal(t, int64(371000), breakdown.Total.Amount)
}

func TestQuoteTotalIsExactSum(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultFeeSchedule())
	tests := []struct {
		name    string
		nightly int64
		nights  int
	}{
		{"one cheap night", 999, 1},
		{"odd rate", 33333, 7},
		{"long stay", 12750, 30},
		{"single cent rate", 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := date(2026, 6, 1).AddDate(0, 0, tt.nights)
			breakdown, err := calc.Quote(money.Must(tt.nightly, "USD"), mustRange(t, date(2026, 6, 1), out))
			require.NoError(t, err)

			assert.Equal(t, tt.nights, breakdown.Nights)
			sum := breakdown.Subtotal.Amount + breakdown.ServiceFee.Amount + breakdown.CleaningFee.Amount + breakdown.Taxes.Amount
			assert.Equal(t, sum, breakdown.Total.Amount)
			assert.Equal(t, breakdown.Nightly.Amount*int64(tt.nights), breakdown.Subtotal.Amount)
		})
	}
}

func TestQuoteRejectsBadInput(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultFeeSchedule())
	dr := mustRange(t, date(2026, 6, 1), date(2026, 6, 4))

	_, err := calc.Quote(money.Money{Amount: 1000}, dr)
	assert.ErrorIs(t, err, pricing.ErrCurrencyUnset)

	_, err = calc.Quote(money.Must(0, "USD"), dr)
	assert.ErrorIs(t, err, pricing.ErrNightlyRate)

	_, err = calc.Quote(money.Must(1000, "USD"), daterange.DateRange{})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestQuoteUsesConfiguredSchedule(t *testing.T) {
	calc := pricing.NewCalculator(pricing.FeeSchedule{ServiceFeePercent: 5, TaxPercent: 20, CleaningFeeCents: 7500})
	breakdown, err := calc.Quote(money.Must(10000, "EUR"), mustRange(t, date(2026, 6, 1), date(2026, 6, 3)))
	require.NoError(t, err)

	assert.Equal(t, int64(1000), breakdown.ServiceFee.Amount)
	assert.Equal(t, int64(4000), breakdown.Taxes.Amount)
	assert.Equal(t, int64(7500), breakdown.CleaningFee.Amount)
	assert.Equal(t, "EUR", breakdown.Total.Currency)
}
