package pricing

import (
	"errors"

	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrNightlyRate   = errors.New("pricing: nightly rate must be positive")
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
)

// FeeSchedule holds the deployment-specific pricing constants. Percentages
// are whole percent values; the cleaning fee is in minor units.
type FeeSchedule struct {
	ServiceFeePercent int
	TaxPercent        int
	CleaningFeeCents  int64
}

// DefaultFeeSchedule mirrors the platform defaults: 10% service fee,
// 12% taxes, 50.00 cleaning fee.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		ServiceFeePercent: 10,
		TaxPercent:        12,
		CleaningFeeCents:  5000,
	}
}

// PriceBreakdown is the full quote for a stay. Total is always the exact
// sum of the listed components.
type PriceBreakdown struct {
	Nights      int
	Nightly     money.Money
	Subtotal    money.Money
	ServiceFee  money.Money
	CleaningFee money.Money
	Taxes       money.Money
	Total       money.Money
}

// Calculator computes a quote from a nightly rate and a date range.
type Calculator struct {
	Fees FeeSchedule
}

func NewCalculator(fees FeeSchedule) Calculator {
	return Calculator{Fees: fees}
}

// Quote prices the given stay. The range must already be validated; the
// nightly rate must be positive.
func (c Calculator) Quote(nightly money.Money, dr daterange.DateRange) (PriceBreakdown, error) {
	if nightly.Currency == "" {
		return PriceBreakdown{}, ErrCurrencyUnset
	}
	if nightly.Amount <= 0 {
		return PriceBreakdown{}, ErrNightlyRate
	}
	if err := dr.Validate(); err != nil {
		return PriceBreakdown{}, err
	}

	nights := dr.Nights()
	subtotal := nightly.Multiply(int64(nights))
	serviceFee := subtotal.Percent(c.Fees.ServiceFeePercent)
	taxes := subtotal.Percent(c.Fees.TaxPercent)
	cleaning := money.Money{Amount: c.Fees.CleaningFeeCents, Currency: nightly.Currency}

	total := subtotal
	for _, part := range []money.Money{serviceFee, cleaning, taxes} {
		sum, err := total.Add(part)
		if err != nil {
			return PriceBreakdown{}, err
		}
		total = sum
	}

	return PriceBreakdown{
		Nights:      nights,
		Nightly:     nightly,
		Subtotal:    subtotal,
		ServiceFee:  serviceFee,
		CleaningFee: cleaning,
		Taxes:       taxes,
		Total:       total,
	}, nil
}
