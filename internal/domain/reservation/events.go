package reservation

import (
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

type Requested struct {
	ReservationID ReservationID       `json:"reservation_id"`
	ListingID     listings.ListingID  `json:"listing_id"`
	GuestID       string              `json:"guest_id"`
	Range         daterange.DateRange `json:"range"`
	Guests        int                 `json:"guests"`
	Total         money.Money         `json:"total"`
	At            time.Time           `json:"at"`
}

func (e Requested) EventName() string     { return "reservation.requested" }
func (e Requested) AggregateID() string   { return string(e.ReservationID) }
func (e Requested) OccurredAt() time.Time { return e.At }

type Approved struct {
	ReservationID ReservationID `json:"reservation_id"`
	Deposit       money.Money   `json:"deposit"`
	Remaining     money.Money   `json:"remaining"`
	At            time.Time     `json:"at"`
}

func (e Approved) EventName() string     { return "reservation.approved" }
func (e Approved) AggregateID() string   { return string(e.ReservationID) }
func (e Approved) OccurredAt() time.Time { return e.At }

type Declined struct {
	ReservationID ReservationID `json:"reservation_id"`
	Reason        string        `json:"reason"`
	At            time.Time     `json:"at"`
}

func (e Declined) EventName() string     { return "reservation.declined" }
func (e Declined) AggregateID() string   { return string(e.ReservationID) }
func (e Declined) OccurredAt() time.Time { return e.At }

type DepositReceived struct {
	ReservationID ReservationID `json:"reservation_id"`
	Amount        money.Money   `json:"amount"`
	DueDate       time.Time     `json:"due_date,omitzero"`
	At            time.Time     `json:"at"`
}

func (e DepositReceived) EventName() string     { return "reservation.deposit_received" }
func (e DepositReceived) AggregateID() string   { return string(e.ReservationID) }
func (e DepositReceived) OccurredAt() time.Time { return e.At }

type FullPaymentReceived struct {
	ReservationID ReservationID `json:"reservation_id"`
	Amount        money.Money   `json:"amount"`
	At            time.Time     `json:"at"`
}

func (e FullPaymentReceived) EventName() string     { return "reservation.full_payment_received" }
func (e FullPaymentReceived) AggregateID() string   { return string(e.ReservationID) }
func (e FullPaymentReceived) OccurredAt() time.Time { return e.At }

type Confirmed struct {
	ReservationID ReservationID       `json:"reservation_id"`
	ListingID     listings.ListingID  `json:"listing_id"`
	Range         daterange.DateRange `json:"range"`
	At            time.Time           `json:"at"`
}

func (e Confirmed) EventName() string     { return "reservation.confirmed" }
func (e Confirmed) AggregateID() string   { return string(e.ReservationID) }
func (e Confirmed) OccurredAt() time.Time { return e.At }

type RemainingPaymentReceived struct {
	ReservationID ReservationID `json:"reservation_id"`
	Amount        money.Money   `json:"amount"`
	At            time.Time     `json:"at"`
}

func (e RemainingPaymentReceived) EventName() string     { return "reservation.remaining_payment_received" }
func (e RemainingPaymentReceived) AggregateID() string   { return string(e.ReservationID) }
func (e RemainingPaymentReceived) OccurredAt() time.Time { return e.At }

type Cancelled struct {
	ReservationID ReservationID `json:"reservation_id"`
	Reason        string        `json:"reason,omitempty"`
	RefundPercent int           `json:"refund_percent"`
	Refund        money.Money   `json:"refund"`
	At            time.Time     `json:"at"`
}

func (e Cancelled) EventName() string     { return "reservation.cancelled" }
func (e Cancelled) AggregateID() string   { return string(e.ReservationID) }
func (e Cancelled) OccurredAt() time.Time { return e.At }

type Arrived struct {
	ReservationID ReservationID `json:"reservation_id"`
	At            time.Time     `json:"at"`
}

func (e Arrived) EventName() string     { return "reservation.guest_arrived" }
func (e Arrived) AggregateID() string   { return string(e.ReservationID) }
func (e Arrived) OccurredAt() time.Time { return e.At }

type Completed struct {
	ReservationID ReservationID `json:"reservation_id"`
	At            time.Time     `json:"at"`
}

func (e Completed) EventName() string     { return "reservation.stay_completed" }
func (e Completed) AggregateID() string   { return string(e.ReservationID) }
func (e Completed) OccurredAt() time.Time { return e.At }
