package reservation

import (
	"context"
	"time"

	"stayhub/internal/domain/cancellation"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/payment"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/money"
)

type ReservationID string

// State is the reservation lifecycle position. Values are wire-visible.
type State string

const (
	StatePending         State = "pending"
	StateAwaitingPayment State = "confirmed_awaiting_payment"
	StateConfirmed       State = "confirmed"
	StateArrived         State = "arrived"
	StateCompleted       State = "completed"
	StateDeclined        State = "declined"
	StateCancelled       State = "cancelled"
)

// Active reports whether the reservation still blocks its dates.
func (s State) Active() bool {
	switch s {
	case StatePending, StateAwaitingPayment, StateConfirmed, StateArrived:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateDeclined, StateCancelled, StateCompleted:
		return true
	default:
		return false
	}
}

// Event identifies a lifecycle transition request.
type Event string

const (
	EventHostApprove   Event = "host_approve"
	EventHostDecline   Event = "host_decline"
	EventDepositPaid   Event = "deposit_paid"
	EventFullPaid      Event = "full_paid"
	EventRemainingPaid Event = "remaining_paid"
	EventCancel        Event = "cancel"
	EventArrival       Event = "arrival_marked"
	EventComplete      Event = "completion_marked"
)

// HistoryEntry is one line of the append-only audit log.
type HistoryEntry struct {
	From  State
	To    State
	Actor string
	Note  string
	At    time.Time
}

// Reservation is the aggregate owning the lifecycle state machine. Fields
// are mutated only through the transition methods below; the nightly rate
// and the payment plan are frozen snapshots.
type Reservation struct {
	ID        ReservationID
	ListingID listings.ListingID
	GuestID   string
	HostID    listings.HostID
	Range     daterange.DateRange
	Guests    int

	Nightly money.Money
	Price   pricing.PriceBreakdown
	Plan    payment.Plan

	DepositPaid    bool
	RemainingPaid  bool
	PaymentDueDate time.Time

	State         State
	DeclineReason string
	CancelReason  string
	RefundPercent int
	Refund        money.Money

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	History   []HistoryEntry

	events.EventRecorder
}

// Repository is the durable store behind the engine. Save performs a
// compare-and-swap on Version and returns ErrVersionConflict when the
// persisted version moved. CreateIfAvailable must atomically reject a
// reservation whose range overlaps an active one for the same listing,
// returning ErrDateConflict from the availability package.
type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	CreateIfAvailable(ctx context.Context, r *Reservation) error
	ListActiveForListing(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) ([]*Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Reservation, error)
	ListByHost(ctx context.Context, hostID listings.HostID) ([]*Reservation, error)
}

type CreateParams struct {
	ID        ReservationID
	ListingID listings.ListingID
	GuestID   string
	HostID    listings.HostID
	Range     daterange.DateRange
	Guests    int
	MaxGuests int
	Nightly   money.Money
	Price     pricing.PriceBreakdown
	PlanKind  payment.PlanKind
	Method    payment.Method
	CreatedAt time.Time
}

// NewReservation validates the request and opens the lifecycle in pending.
func NewReservation(params CreateParams) (*Reservation, error) {
	if params.GuestID == "" {
		return nil, &ValidationError{Field: "guest_id", Reason: "required"}
	}
	if params.Guests < 1 {
		return nil, &ValidationError{Field: "guests", Reason: "must be at least 1"}
	}
	if params.MaxGuests > 0 && params.Guests > params.MaxGuests {
		return nil, &ValidationError{Field: "guests", Reason: "exceeds listing capacity"}
	}
	if err := params.Range.Validate(); err != nil {
		return nil, &ValidationError{Field: "dates", Reason: err.Error()}
	}
	if _, err := payment.ParsePlanKind(string(params.PlanKind)); err != nil {
		return nil, &ValidationError{Field: "plan", Reason: err.Error()}
	}
	if _, err := payment.ParseMethod(string(params.Method)); err != nil {
		return nil, &ValidationError{Field: "remaining_payment_method", Reason: err.Error()}
	}
	if params.Price.Total.Amount <= 0 {
		return nil, &ValidationError{Field: "total", Reason: "must be positive"}
	}

	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		HostID:    params.HostID,
		Range:     params.Range,
		Guests:    params.Guests,
		Nightly:   params.Nightly,
		Price:     params.Price,
		Plan:      payment.Plan{Kind: params.PlanKind, Method: params.Method},
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(Requested{ReservationID: r.ID, ListingID: r.ListingID, GuestID: r.GuestID, Range: r.Range, Guests: r.Guests, Total: r.Price.Total, At: now})
	return r, nil
}

// Approve moves a pending request to confirmed_awaiting_payment and
// freezes the payment plan amounts.
func (r *Reservation) Approve(actor string, now time.Time) error {
	if r.State != StatePending {
		return invalidTransition(r.State, EventHostApprove)
	}
	plan, err := payment.NewPlan(r.Plan.Kind, r.Price.Total, r.Plan.Method)
	if err != nil {
		return err
	}
	r.Plan = plan
	r.transition(StateAwaitingPayment, actor, "", now)
	r.Record(Approved{ReservationID: r.ID, Deposit: plan.Deposit, Remaining: plan.Remaining, At: r.UpdatedAt})
	return nil
}

// Decline rejects a pending request. A reason is mandatory.
func (r *Reservation) Decline(actor, reason string, now time.Time) error {
	if r.State != StatePending {
		return invalidTransition(r.State, EventHostDecline)
	}
	if reason == "" {
		return &ValidationError{Field: "reason", Reason: "required when declining"}
	}
	r.DeclineReason = reason
	r.transition(StateDeclined, actor, reason, now)
	r.Record(Declined{ReservationID: r.ID, Reason: reason, At: r.UpdatedAt})
	return nil
}

// RecordDepositPaid registers the deposit capture result. The amount must
// equal the plan's deposit exactly. Receiving the deposit confirms the
// reservation; on a split plan it also fixes the remaining-payment due
// date. A second deposit event finds the state already confirmed and
// fails, so a double capture can never be applied twice.
func (r *Reservation) RecordDepositPaid(amount money.Money, actor string, now time.Time) error {
	if r.State != StateAwaitingPayment || r.DepositPaid {
		return invalidTransition(r.State, EventDepositPaid)
	}
	if !amount.Equal(r.Plan.Deposit) {
		return &AmountMismatchError{Event: EventDepositPaid, Expected: r.Plan.Deposit, Received: amount}
	}
	r.DepositPaid = true
	if r.Plan.IsSplit() {
		r.PaymentDueDate = r.Plan.DueDate(r.Range.CheckIn)
	} else {
		// A full plan's deposit is the whole total.
		r.RemainingPaid = true
	}
	r.transition(StateConfirmed, actor, "", now)
	r.Record(DepositReceived{ReservationID: r.ID, Amount: amount, DueDate: r.PaymentDueDate, At: r.UpdatedAt})
	r.Record(Confirmed{ReservationID: r.ID, ListingID: r.ListingID, Range: r.Range, At: r.UpdatedAt})
	return nil
}

// RecordFullPayment registers a single up-front payment of the whole
// total. Only valid for full plans.
func (r *Reservation) RecordFullPayment(amount money.Money, actor string, now time.Time) error {
	if r.State != StateAwaitingPayment || r.DepositPaid || r.Plan.IsSplit() {
		return invalidTransition(r.State, EventFullPaid)
	}
	if !amount.Equal(r.Price.Total) {
		return &AmountMismatchError{Event: EventFullPaid, Expected: r.Price.Total, Received: amount}
	}
	r.DepositPaid = true
	r.RemainingPaid = true
	r.transition(StateConfirmed, actor, "", now)
	r.Record(FullPaymentReceived{ReservationID: r.ID, Amount: amount, At: r.UpdatedAt})
	r.Record(Confirmed{ReservationID: r.ID, ListingID: r.ListingID, Range: r.Range, At: r.UpdatedAt})
	return nil
}

// RecordRemainingPaid settles the remainder of a split plan.
func (r *Reservation) RecordRemainingPaid(amount money.Money, actor string, now time.Time) error {
	if r.State != StateConfirmed || !r.Plan.IsSplit() || !r.DepositPaid || r.RemainingPaid {
		return invalidTransition(r.State, EventRemainingPaid)
	}
	if !amount.Equal(r.Plan.Remaining) {
		return &AmountMismatchError{Event: EventRemainingPaid, Expected: r.Plan.Remaining, Received: amount}
	}
	r.RemainingPaid = true
	r.touch(now)
	r.History = append(r.History, HistoryEntry{From: r.State, To: r.State, Actor: actor, Note: "remaining payment received", At: r.UpdatedAt})
	r.Record(RemainingPaymentReceived{ReservationID: r.ID, Amount: amount, At: r.UpdatedAt})
	return nil
}

// Cancel ends the reservation and computes the tiered refund against
// what has actually been paid so far. Allowed while awaiting payment or
// confirmed, as long as check-in has not passed.
func (r *Reservation) Cancel(actor, reason string, policy cancellation.Policy, now time.Time) (cancellation.Quote, error) {
	switch r.State {
	case StateAwaitingPayment, StateConfirmed:
	default:
		return cancellation.Quote{}, invalidTransition(r.State, EventCancel)
	}
	if daterange.Date(now).After(r.Range.CheckIn) {
		return cancellation.Quote{}, ErrCheckInPassed
	}
	quote := policy.QuoteRefund(r.AmountPaid(), r.Range.CheckIn, now)
	r.RefundPercent = quote.RefundPercent
	r.Refund = quote.RefundAmount
	r.CancelReason = reason
	r.transition(StateCancelled, actor, reason, now)
	r.Record(Cancelled{ReservationID: r.ID, Reason: reason, RefundPercent: quote.RefundPercent, Refund: quote.RefundAmount, At: r.UpdatedAt})
	return quote, nil
}

// MarkArrived records the guest showing up. Only the check-in day itself
// or the day after qualify, regardless of who marks it.
func (r *Reservation) MarkArrived(actor string, now time.Time) error {
	if r.State != StateConfirmed {
		return invalidTransition(r.State, EventArrival)
	}
	today := daterange.Date(now)
	dayAfter := r.Range.CheckIn.AddDate(0, 0, 1)
	if !today.Equal(r.Range.CheckIn) && !today.Equal(dayAfter) {
		return ErrNotCheckInDay
	}
	r.transition(StateArrived, actor, "", now)
	r.Record(Arrived{ReservationID: r.ID, At: r.UpdatedAt})
	return nil
}

// Complete closes out the stay after arrival, enabling review eligibility.
func (r *Reservation) Complete(actor string, now time.Time) error {
	if r.State != StateArrived {
		return invalidTransition(r.State, EventComplete)
	}
	r.transition(StateCompleted, actor, "", now)
	r.Record(Completed{ReservationID: r.ID, At: r.UpdatedAt})
	return nil
}

// AmountPaid is the money actually received so far.
func (r *Reservation) AmountPaid() money.Money {
	switch {
	case r.DepositPaid && r.RemainingPaid:
		return r.Price.Total
	case r.DepositPaid:
		return r.Plan.Deposit
	default:
		return money.Zero(r.Price.Total.Currency)
	}
}

// PaymentOverdue derives the overdue flag from the injected now; nothing
// is stored and no background job exists.
func (r *Reservation) PaymentOverdue(now time.Time) bool {
	if !r.Plan.IsSplit() || !r.DepositPaid || r.RemainingPaid {
		return false
	}
	if r.State != StateConfirmed {
		return false
	}
	return daterange.Date(now).After(r.PaymentDueDate)
}

// CanReview reports post-stay review eligibility.
func (r *Reservation) CanReview() bool {
	return r.State == StateCompleted
}

func (r *Reservation) transition(to State, actor, note string, now time.Time) {
	from := r.State
	r.State = to
	r.touch(now)
	r.History = append(r.History, HistoryEntry{From: from, To: to, Actor: actor, Note: note, At: r.UpdatedAt})
}

func (r *Reservation) touch(now time.Time) {
	r.UpdatedAt = now.UTC()
}
