package reservations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/cancellation"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/payment"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

var ErrListingInactive = errors.New("reservations: listing is not accepting requests")

// Service composes the pricing calculator, the payment plan, the
// cancellation policy, the availability index and the state machine
// behind the engine's public operations. It never initiates payment
// capture; it only records capture results delivered as events.
type Service struct {
	reservations reservation.Repository
	listings     listings.Repository
	index        *availability.Index
	calculator   pricing.Calculator
	policy       cancellation.Policy
	clock        Clock
	notifier     Notifier
	logger       *slog.Logger
}

func NewService(
	repo reservation.Repository,
	listingRepo listings.Repository,
	calculator pricing.Calculator,
	policy cancellation.Policy,
	clock Clock,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		reservations: repo,
		listings:     listingRepo,
		index:        availability.NewIndex(repo),
		calculator:   calculator,
		policy:       policy,
		clock:        clock,
		notifier:     notifier,
		logger:       logger,
	}
}

// RequestInput is a validated-on-entry reservation request.
type RequestInput struct {
	ListingID listings.ListingID
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int
	Plan      payment.PlanKind
	Method    payment.Method
}

// RequestReservation validates the request, prices the stay and creates
// the reservation in pending. The availability check and the insert are
// one atomic storage operation: under concurrent requests for the same
// dates exactly one caller wins and the rest get ErrDateConflict.
func (s *Service) RequestReservation(ctx context.Context, input RequestInput) (*reservation.Reservation, error) {
	dr, err := daterange.New(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, &reservation.ValidationError{Field: "dates", Reason: err.Error()}
	}
	now := s.clock.Now().UTC()
	if dr.CheckIn.Before(daterange.Date(now)) {
		return nil, &reservation.ValidationError{Field: "check_in", Reason: "date is in the past"}
	}

	listing, err := s.listings.ByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.Active {
		return nil, ErrListingInactive
	}

	nightly := money.Money{Amount: listing.NightlyRateCents, Currency: listing.Currency}
	breakdown, err := s.calculator.Quote(nightly, dr)
	if err != nil {
		return nil, err
	}

	res, err := reservation.NewReservation(reservation.CreateParams{
		ID:        reservation.ReservationID(uuid.NewString()),
		ListingID: listing.ID,
		GuestID:   input.GuestID,
		HostID:    listing.Host,
		Range:     dr,
		Guests:    input.Guests,
		MaxGuests: listing.MaxGuests,
		Nightly:   nightly,
		Price:     breakdown,
		PlanKind:  input.Plan,
		Method:    input.Method,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.reservations.CreateIfAvailable(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	return res, nil
}

// TransitionPayload carries the event-specific arguments.
type TransitionPayload struct {
	Actor       string
	Reason      string
	AmountCents int64
}

// ApplyTransition loads the persisted reservation, applies the event
// against that state and saves with a version compare-and-swap. A lost
// race with a concurrent writer is retried exactly once against freshly
// loaded state before the conflict is surfaced.
func (s *Service) ApplyTransition(ctx context.Context, id reservation.ReservationID, event reservation.Event, payload TransitionPayload) (*reservation.Reservation, error) {
	res, err := s.applyOnce(ctx, id, event, payload)
	if errors.Is(err, reservation.ErrVersionConflict) {
		s.logger.Info("transition hit concurrent write, retrying", "reservation_id", id, "event", event)
		res, err = s.applyOnce(ctx, id, event, payload)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	return res, nil
}

func (s *Service) applyOnce(ctx context.Context, id reservation.ReservationID, event reservation.Event, payload TransitionPayload) (*reservation.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	if err := s.dispatch(res, event, payload, now); err != nil {
		return nil, err
	}
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) dispatch(res *reservation.Reservation, event reservation.Event, payload TransitionPayload, now time.Time) error {
	amount := money.Money{Amount: payload.AmountCents, Currency: res.Price.Total.Currency}
	switch event {
	case reservation.EventHostApprove:
		return res.Approve(payload.Actor, now)
	case reservation.EventHostDecline:
		return res.Decline(payload.Actor, payload.Reason, now)
	case reservation.EventDepositPaid:
		return res.RecordDepositPaid(amount, payload.Actor, now)
	case reservation.EventFullPaid:
		return res.RecordFullPayment(amount, payload.Actor, now)
	case reservation.EventRemainingPaid:
		return res.RecordRemainingPaid(amount, payload.Actor, now)
	case reservation.EventCancel:
		_, err := res.Cancel(payload.Actor, payload.Reason, s.policy, now)
		return err
	case reservation.EventArrival:
		return res.MarkArrived(payload.Actor, now)
	case reservation.EventComplete:
		return res.Complete(payload.Actor, now)
	default:
		return &reservation.ValidationError{Field: "event", Reason: "unknown event " + string(event)}
	}
}

// GetReservation returns the persisted aggregate.
func (s *Service) GetReservation(ctx context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	return s.reservations.ByID(ctx, id)
}

// ComputeCancellationQuote previews the refund a cancellation at now
// would produce, without changing any state.
func (s *Service) ComputeCancellationQuote(ctx context.Context, id reservation.ReservationID, now time.Time) (cancellation.Quote, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return cancellation.Quote{}, err
	}
	switch res.State {
	case reservation.StateAwaitingPayment, reservation.StateConfirmed:
	default:
		return cancellation.Quote{}, &reservation.InvalidTransitionError{State: res.State, Event: reservation.EventCancel}
	}
	return s.policy.QuoteRefund(res.AmountPaid(), res.Range.CheckIn, now), nil
}

// ComputePricing quotes a stay from a base nightly price. Pure: no
// repository access, no clock.
func (s *Service) ComputePricing(nightly money.Money, checkIn, checkOut time.Time) (pricing.PriceBreakdown, error) {
	dr, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return pricing.PriceBreakdown{}, &reservation.ValidationError{Field: "dates", Reason: err.Error()}
	}
	return s.calculator.Quote(nightly, dr)
}

// PriceListing quotes a stay using the listing's stored nightly rate.
func (s *Service) PriceListing(ctx context.Context, listingID listings.ListingID, checkIn, checkOut time.Time) (pricing.PriceBreakdown, error) {
	listing, err := s.listings.ByID(ctx, listingID)
	if err != nil {
		return pricing.PriceBreakdown{}, err
	}
	return s.ComputePricing(money.Money{Amount: listing.NightlyRateCents, Currency: listing.Currency}, checkIn, checkOut)
}

// ListingCalendar lists booked spans for a listing inside the window.
func (s *Service) ListingCalendar(ctx context.Context, listingID listings.ListingID, from, to time.Time) ([]availability.BookedRange, error) {
	window, err := daterange.New(from, to)
	if err != nil {
		return nil, &reservation.ValidationError{Field: "window", Reason: err.Error()}
	}
	return s.index.Calendar(ctx, listingID, window)
}

// ListForGuest returns the guest's reservations, newest first.
func (s *Service) ListForGuest(ctx context.Context, guestID string) ([]*reservation.Reservation, error) {
	return s.reservations.ListByGuest(ctx, guestID)
}

// ListForHost returns reservations across the host's listings.
func (s *Service) ListForHost(ctx context.Context, hostID listings.HostID) ([]*reservation.Reservation, error) {
	return s.reservations.ListByHost(ctx, hostID)
}

// Now exposes the injected clock for read paths that derive values such
// as the overdue flag.
func (s *Service) Now() time.Time {
	return s.clock.Now().UTC()
}

// publish drains the events the aggregate recorded during the just
// persisted mutation and hands each to the notifier. Best-effort only.
func (s *Service) publish(ctx context.Context, res *reservation.Reservation) {
	pending := res.PendingEvents()
	res.ClearEvents()
	if s.notifier == nil {
		return
	}
	for _, event := range pending {
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("notification delivery failed", "reservation_id", event.AggregateID(), "event", event.EventName(), "error", err)
		}
	}
}
