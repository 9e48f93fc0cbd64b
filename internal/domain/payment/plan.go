package payment

import (
	"errors"
	"time"

	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var (
	ErrUnknownPlan   = errors.New("payment: unknown plan kind")
	ErrInvalidTotal  = errors.New("payment: total must be positive")
	ErrUnknownMethod = errors.New("payment: unknown remaining-payment method")
)

// PlanKind selects how the total is collected.
type PlanKind string

const (
	// PlanDeposit splits the total into a half deposit and a remainder
	// due shortly before check-in.
	PlanDeposit PlanKind = "deposit"
	// PlanFull collects the whole total up front.
	PlanFull PlanKind = "full"
)

func ParsePlanKind(raw string) (PlanKind, error) {
	switch PlanKind(raw) {
	case PlanDeposit, PlanFull:
		return PlanKind(raw), nil
	default:
		return "", ErrUnknownPlan
	}
}

// Method is the channel the remaining amount is settled through.
type Method string

const (
	MethodPlatform Method = "platform"
	MethodPersonal Method = "personal"
)

func ParseMethod(raw string) (Method, error) {
	switch Method(raw) {
	case MethodPlatform, MethodPersonal:
		return Method(raw), nil
	default:
		return "", ErrUnknownMethod
	}
}

const depositPercent = 50

// remainingDueLeadDays is how many days before check-in the remainder
// falls due.
const remainingDueLeadDays = 3

// Plan is the immutable payment schedule attached to a reservation when
// the host approves it. Deposit and Remaining always sum exactly to the
// total: the half-up rounding residual lands on the remainder, never the
// deposit.
type Plan struct {
	Kind      PlanKind
	Deposit   money.Money
	Remaining money.Money
	Method    Method
}

// NewPlan derives the schedule from a total.
func NewPlan(kind PlanKind, total money.Money, method Method) (Plan, error) {
	if total.Amount <= 0 {
		return Plan{}, ErrInvalidTotal
	}
	switch kind {
	case PlanFull:
		return Plan{
			Kind:      kind,
			Deposit:   total,
			Remaining: money.Zero(total.Currency),
			Method:    method,
		}, nil
	case PlanDeposit:
		deposit := total.Percent(depositPercent)
		remaining, err := total.Sub(deposit)
		if err != nil {
			return Plan{}, err
		}
		return Plan{
			Kind:      kind,
			Deposit:   deposit,
			Remaining: remaining,
			Method:    method,
		}, nil
	default:
		return Plan{}, ErrUnknownPlan
	}
}

// IsSplit reports whether a remainder is collected separately.
func (p Plan) IsSplit() bool {
	return p.Kind == PlanDeposit
}

// DueDate returns when the remainder must be settled. Only meaningful for
// split plans, and only once the deposit has actually been received.
func (p Plan) DueDate(checkIn time.Time) time.Time {
	return daterange.Date(checkIn).AddDate(0, 0, -remainingDueLeadDays)
}
