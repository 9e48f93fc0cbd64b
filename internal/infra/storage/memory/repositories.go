package memory

import (
	"context"
	"sort"
	"sync"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
)

// ListingRepository is an in-memory listing store for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[listings.ListingID]listings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[listings.ListingID]listings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, listings.ErrNotFound
	}
	out := listing
	return &out, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *listings.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = *listing
	return nil
}

// ReservationRepository keeps reservations in memory. All writes go
// through one mutex, which is what makes CreateIfAvailable a genuinely
// atomic check-and-reserve: two concurrent requests for overlapping
// dates serialize here and exactly one wins.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[reservation.ReservationID]*reservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[reservation.ReservationID]*reservation.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, reservation.ErrNotFound
	}
	return clone(res), nil
}

// Save performs a compare-and-swap on Version. A caller holding a stale
// snapshot gets ErrVersionConflict and must reload.
func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[res.ID]
	if !ok {
		return reservation.ErrNotFound
	}
	if current.Version != res.Version {
		return reservation.ErrVersionConflict
	}
	stored := clone(res)
	stored.Version++
	r.items[res.ID] = stored
	res.Version = stored.Version
	return nil
}

// CreateIfAvailable inserts the reservation unless its range overlaps an
// active reservation for the same listing. Check and insert happen under
// the same lock.
func (r *ReservationRepository) CreateIfAvailable(ctx context.Context, res *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ListingID != res.ListingID || !existing.State.Active() {
			continue
		}
		if existing.Range.Overlaps(res.Range) {
			return availability.ErrDateConflict
		}
	}
	stored := clone(res)
	stored.Version = 1
	r.items[res.ID] = stored
	res.Version = stored.Version
	return nil
}

func (r *ReservationRepository) ListActiveForListing(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*reservation.Reservation, 0)
	for _, res := range r.items {
		if res.ListingID != listingID || !res.State.Active() {
			continue
		}
		if !res.Range.Overlaps(dr) {
			continue
		}
		matches = append(matches, clone(res))
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.CheckIn.Before(matches[j].Range.CheckIn)
	})
	return matches, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*reservation.Reservation, 0)
	for _, res := range r.items {
		if res.GuestID == guestID {
			matches = append(matches, clone(res))
		}
	}
	sortNewestFirst(matches)
	return matches, nil
}

func (r *ReservationRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*reservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*reservation.Reservation, 0)
	for _, res := range r.items {
		if res.HostID == hostID {
			matches = append(matches, clone(res))
		}
	}
	sortNewestFirst(matches)
	return matches, nil
}

func sortNewestFirst(items []*reservation.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// clone snapshots the aggregate so guards always run against persisted
// state rather than a pointer another caller may still be mutating.
func clone(res *reservation.Reservation) *reservation.Reservation {
	out := *res
	out.History = append([]reservation.HistoryEntry(nil), res.History...)
	out.EventRecorder = events.EventRecorder{}
	return &out
}
