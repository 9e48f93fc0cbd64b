package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/reservations"
	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/reservation"
)

// respondError maps the engine's error taxonomy onto HTTP statuses. The
// message always names the guard or invariant that failed, so the client
// renders it verbatim.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var validationErr *reservation.ValidationError
	var transitionErr *reservation.InvalidTransitionError
	var amountErr *reservation.AmountMismatchError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, availability.ErrDateConflict),
		errors.Is(err, reservation.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, listings.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &transitionErr),
		errors.As(err, &amountErr),
		errors.Is(err, reservation.ErrNotCheckInDay),
		errors.Is(err, reservation.ErrCheckInPassed),
		errors.Is(err, reservations.ErrListingInactive):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
