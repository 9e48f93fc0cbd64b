package dto

import (
	"time"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/cancellation"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type PriceBreakdownDTO struct {
	Nights      int      `json:"nights"`
	Nightly     MoneyDTO `json:"nightly"`
	Subtotal    MoneyDTO `json:"subtotal"`
	ServiceFee  MoneyDTO `json:"service_fee"`
	CleaningFee MoneyDTO `json:"cleaning_fee"`
	Taxes       MoneyDTO `json:"taxes"`
	Total       MoneyDTO `json:"total"`
}

func MapPriceBreakdown(b pricing.PriceBreakdown) PriceBreakdownDTO {
	return PriceBreakdownDTO{
		Nights:      b.Nights,
		Nightly:     MapMoney(b.Nightly),
		Subtotal:    MapMoney(b.Subtotal),
		ServiceFee:  MapMoney(b.ServiceFee),
		CleaningFee: MapMoney(b.CleaningFee),
		Taxes:       MapMoney(b.Taxes),
		Total:       MapMoney(b.Total),
	}
}

type HistoryEntryDTO struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor string    `json:"actor,omitempty"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}

type ReservationDTO struct {
	ID             string            `json:"id"`
	ListingID      string            `json:"listing_id"`
	GuestID        string            `json:"guest_id"`
	HostID         string            `json:"host_id"`
	CheckIn        time.Time         `json:"check_in"`
	CheckOut       time.Time         `json:"check_out"`
	Guests         int               `json:"guests"`
	Status         string            `json:"status"`
	Price          PriceBreakdownDTO `json:"price"`
	Plan           string            `json:"plan"`
	Deposit        MoneyDTO          `json:"deposit"`
	Remaining      MoneyDTO          `json:"remaining"`
	Method         string            `json:"remaining_payment_method"`
	DepositPaid    bool              `json:"deposit_paid"`
	RemainingPaid  bool              `json:"remaining_paid"`
	PaymentDueDate *time.Time        `json:"payment_due_date,omitempty"`
	PaymentOverdue bool              `json:"payment_overdue"`
	DeclineReason  string            `json:"decline_reason,omitempty"`
	CancelReason   string            `json:"cancel_reason,omitempty"`
	RefundPercent  int               `json:"refund_percent,omitempty"`
	Refund         *MoneyDTO         `json:"refund,omitempty"`
	CanReview      bool              `json:"can_review"`
	CreatedAt      time.Time         `json:"created_at"`
	History        []HistoryEntryDTO `json:"history"`
}

// MapReservation renders the aggregate for API consumers. The overdue
// flag is derived from now at mapping time, never stored.
func MapReservation(r *reservation.Reservation, now time.Time) ReservationDTO {
	out := ReservationDTO{
		ID:             string(r.ID),
		ListingID:      string(r.ListingID),
		GuestID:        r.GuestID,
		HostID:         string(r.HostID),
		CheckIn:        r.Range.CheckIn,
		CheckOut:       r.Range.CheckOut,
		Guests:         r.Guests,
		Status:         string(r.State),
		Price:          MapPriceBreakdown(r.Price),
		Plan:           string(r.Plan.Kind),
		Deposit:        MapMoney(r.Plan.Deposit),
		Remaining:      MapMoney(r.Plan.Remaining),
		Method:         string(r.Plan.Method),
		DepositPaid:    r.DepositPaid,
		RemainingPaid:  r.RemainingPaid,
		PaymentOverdue: r.PaymentOverdue(now),
		DeclineReason:  r.DeclineReason,
		CancelReason:   r.CancelReason,
		RefundPercent:  r.RefundPercent,
		CanReview:      r.CanReview(),
		CreatedAt:      r.CreatedAt,
		History:        make([]HistoryEntryDTO, 0, len(r.History)),
	}
	if !r.PaymentDueDate.IsZero() {
		due := r.PaymentDueDate
		out.PaymentDueDate = &due
	}
	if r.State == reservation.StateCancelled {
		refund := MapMoney(r.Refund)
		out.Refund = &refund
	}
	for _, h := range r.History {
		out.History = append(out.History, HistoryEntryDTO{
			From:  string(h.From),
			To:    string(h.To),
			Actor: h.Actor,
			Note:  h.Note,
			At:    h.At,
		})
	}
	return out
}

type RefundQuoteDTO struct {
	DaysUntilCheckIn int      `json:"days_until_check_in"`
	RefundPercent    int      `json:"refund_percent"`
	AmountPaid       MoneyDTO `json:"amount_paid"`
	RefundAmount     MoneyDTO `json:"refund_amount"`
}

func MapRefundQuote(q cancellation.Quote) RefundQuoteDTO {
	return RefundQuoteDTO{
		DaysUntilCheckIn: q.DaysUntilCheckIn,
		RefundPercent:    q.RefundPercent,
		AmountPaid:       MapMoney(q.AmountPaid),
		RefundAmount:     MapMoney(q.RefundAmount),
	}
}

type BookedRangeDTO struct {
	ReservationID string    `json:"reservation_id"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	Status        string    `json:"status"`
}

type CalendarDTO struct {
	ListingID string           `json:"listing_id"`
	Booked    []BookedRangeDTO `json:"booked"`
}

func MapCalendar(listingID string, booked []availability.BookedRange) CalendarDTO {
	out := CalendarDTO{ListingID: listingID, Booked: make([]BookedRangeDTO, 0, len(booked))}
	for _, b := range booked {
		out.Booked = append(out.Booked, BookedRangeDTO{
			ReservationID: string(b.ReservationID),
			CheckIn:       b.CheckIn,
			CheckOut:      b.CheckOut,
			Status:        string(b.State),
		})
	}
	return out
}
