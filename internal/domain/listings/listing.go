package listings

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("listings: listing not found")
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrGuestsLimit     = errors.New("listings: max guests must be at least 1")
	ErrNightlyRate     = errors.New("listings: nightly rate must be positive")
	ErrInvalidCurrency = errors.New("listings: currency must be a 3-letter code")
)

type ListingID string
type HostID string

// Listing is the read model the reservation engine needs from the listing
// catalog: capacity, the nightly rate quoted to guests, and the host to
// route approval events to. Catalog management lives outside the engine.
type Listing struct {
	ID               ListingID
	Host             HostID
	Title            string
	MaxGuests        int
	NightlyRateCents int64
	Currency         string
	Active           bool
}

func (l *Listing) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrTitleRequired
	}
	if l.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	if l.NightlyRateCents <= 0 {
		return ErrNightlyRate
	}
	if len(l.Currency) != 3 {
		return ErrInvalidCurrency
	}
	return nil
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}
