package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/daterange"
)

// ErrDateConflict is surfaced to the caller as "dates unavailable". Every
// storage implementation maps its own conflict detection onto this error.
var ErrDateConflict = errors.New("availability: requested dates overlap an active reservation")

// ActiveLister is the slice of the reservation repository the index
// reads. Only active states block dates; declined and cancelled stays
// never do.
type ActiveLister interface {
	ListActiveForListing(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) ([]*reservation.Reservation, error)
}

// Index answers overlap queries for a listing's calendar. It is a pure
// read path: conflict exclusion at creation time is enforced atomically
// by the repository's CreateIfAvailable, not here.
type Index struct {
	reservations ActiveLister
}

func NewIndex(lister ActiveLister) *Index {
	return &Index{reservations: lister}
}

// Check reports whether the proposed range is free. Back-to-back stays
// sharing a check-out/check-in day do not conflict.
func (i *Index) Check(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) error {
	active, err := i.reservations.ListActiveForListing(ctx, listingID, dr)
	if err != nil {
		return err
	}
	if Conflicts(dr, active) {
		return ErrDateConflict
	}
	return nil
}

// BookedRange is one occupied span on a listing calendar.
type BookedRange struct {
	ReservationID reservation.ReservationID
	CheckIn       time.Time
	CheckOut      time.Time
	State         reservation.State
}

// Calendar lists the occupied spans inside the window, oldest check-in first.
func (i *Index) Calendar(ctx context.Context, listingID listings.ListingID, window daterange.DateRange) ([]BookedRange, error) {
	active, err := i.reservations.ListActiveForListing(ctx, listingID, window)
	if err != nil {
		return nil, err
	}
	booked := make([]BookedRange, 0, len(active))
	for _, r := range active {
		if !r.State.Active() || !r.Range.Overlaps(window) {
			continue
		}
		booked = append(booked, BookedRange{
			ReservationID: r.ID,
			CheckIn:       r.Range.CheckIn,
			CheckOut:      r.Range.CheckOut,
			State:         r.State,
		})
	}
	sort.Slice(booked, func(a, b int) bool {
		return booked[a].CheckIn.Before(booked[b].CheckIn)
	})
	return booked, nil
}

// Conflicts is the pure overlap rule shared by every storage backend.
func Conflicts(dr daterange.DateRange, active []*reservation.Reservation) bool {
	for _, r := range active {
		if !r.State.Active() {
			continue
		}
		if r.Range.Overlaps(dr) {
			return true
		}
	}
	return false
}

