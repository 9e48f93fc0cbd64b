package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewValidates(t *testing.T) {
	_, err := daterange.New(date(2026, 6, 5), date(2026, 6, 1))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(date(2026, 6, 1), date(2026, 6, 1))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(date(2026, 1, 1), date(2027, 1, 10))
	assert.ErrorIs(t, err, daterange.ErrTooLong)

	dr, err := daterange.New(date(2026, 6, 1), date(2026, 6, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, dr.Nights())
}

func TestNewTruncatesTimeOfDay(t *testing.T) {
	in := time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC)
	out := time.Date(2026, 6, 4, 9, 0, 0, 0, time.UTC)
	dr, err := daterange.New(in, out)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 6, 1), dr.CheckIn)
	assert.Equal(t, date(2026, 6, 4), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestOverlapsHalfOpen(t *testing.T) {
	base, err := daterange.New(date(2026, 6, 1), date(2026, 6, 5))
	require.NoError(t, err)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"identical", date(2026, 6, 1), date(2026, 6, 5), true},
		{"inside", date(2026, 6, 2), date(2026, 6, 3), true},
		{"straddles start", date(2026, 5, 30), date(2026, 6, 2), true},
		{"straddles end", date(2026, 6, 4), date(2026, 6, 8), true},
		{"back to back after", date(2026, 6, 5), date(2026, 6, 8), false},
		{"back to back before", date(2026, 5, 28), date(2026, 6, 1), false},
		{"fully before", date(2026, 5, 20), date(2026, 5, 25), false},
		{"fully after", date(2026, 6, 10), date(2026, 6, 12), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := daterange.New(tt.checkIn, tt.checkOut)
			require.NoError(t, err)
			assert.Equal(t, tt.want, base.Overlaps(other))
			assert.Equal(t, tt.want, other.Overlaps(base))
		})
	}
}

func TestDaysUntilFloors(t *testing.T) {
	dr, err := daterange.New(date(2026, 6, 8), date(2026, 6, 12))
	require.NoError(t, err)

	assert.Equal(t, 7, dr.DaysUntil(date(2026, 6, 1)))
	// Mid-day shrinks the distance below seven whole days.
	assert.Equal(t, 6, dr.DaysUntil(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, dr.DaysUntil(date(2026, 6, 8)))
	assert.Equal(t, -1, dr.DaysUntil(time.Date(2026, 6, 8, 6, 0, 0, 0, time.UTC)))
}

func TestContainsDate(t *testing.T) {
	dr, err := daterange.New(date(2026, 6, 1), date(2026, 6, 5))
	require.NoError(t, err)
	assert.True(t, dr.ContainsDate(date(2026, 6, 1)))
	assert.True(t, dr.ContainsDate(date(2026, 6, 4)))
	assert.False(t, dr.ContainsDate(date(2026, 6, 5)))
	assert.False(t, dr.ContainsDate(date(2026, 5, 31)))
}
