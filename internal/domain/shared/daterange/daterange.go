package daterange

import (
	"errors"
	"math"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrTooLong      = errors.New("daterange: stay exceeds maximum length")
)

// MaxStayNights caps the length of a single stay.
const MaxStayNights = 365

// DateRange represents a half-open interval [checkIn, checkOut) of
// calendar dates. Times are normalized to midnight UTC.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// New builds a validated range, truncating both endpoints to calendar dates.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Date(checkIn), CheckOut: Date(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Date strips the time-of-day component, keeping the calendar date in UTC.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	if dr.Nights() > MaxStayNights {
		return ErrTooLong
	}
	return nil
}

// Nights returns the whole number of nights covered by the range.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges intersect. A check-out on
// the same day as another check-in is not a conflict.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDate reports whether the calendar date falls inside the range.
func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Date(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// DaysUntil returns floor of the distance in days from now to the
// check-in date. Negative once check-in has passed.
func (dr DateRange) DaysUntil(now time.Time) int {
	return int(math.Floor(dr.CheckIn.Sub(now.UTC()).Hours() / 24))
}
