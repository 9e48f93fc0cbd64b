package cancellation

import (
	"time"

	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

// Policy maps the distance to check-in onto a refund percentage. The
// tiers are deployment configuration, not business-rule literals.
type Policy struct {
	// FullRefundDays is the minimum days-until-check-in for a 100% refund.
	FullRefundDays int
	// HalfRefundDays is the minimum days-until-check-in for a 50% refund.
	HalfRefundDays int
	// HalfRefundPercent is the mid-tier percentage.
	HalfRefundPercent int
}

// DefaultPolicy is the platform standard: 100% at 7+ days, 50% between
// 3 and 6 days, nothing under 3 days.
func DefaultPolicy() Policy {
	return Policy{
		FullRefundDays:    7,
		HalfRefundDays:    3,
		HalfRefundPercent: 50,
	}
}

// RefundPercent resolves the tier for a cancellation happening at now
// for a stay starting at checkIn. Pure: now is always injected.
func (p Policy) RefundPercent(checkIn, now time.Time) int {
	days := daterange.DateRange{CheckIn: daterange.Date(checkIn)}.DaysUntil(now)
	switch {
	case days >= p.FullRefundDays:
		return 100
	case days >= p.HalfRefundDays:
		return p.HalfRefundPercent
	default:
		return 0
	}
}

// Quote describes the refund owed on a cancellation.
type Quote struct {
	DaysUntilCheckIn int
	RefundPercent    int
	AmountPaid       money.Money
	RefundAmount     money.Money
}

// QuoteRefund computes the refund against what the guest has already
// paid, rounding half-up at minor-unit granularity.
func (p Policy) QuoteRefund(amountPaid money.Money, checkIn, now time.Time) Quote {
	percent := p.RefundPercent(checkIn, now)
	return Quote{
		DaysUntilCheckIn: daterange.DateRange{CheckIn: daterange.Date(checkIn)}.DaysUntil(now),
		RefundPercent:    percent,
		AmountPaid:       amountPaid,
		RefundAmount:     amountPaid.Percent(percent),
	}
}
