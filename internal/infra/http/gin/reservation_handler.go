package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/reservations"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/payment"
	"stayhub/internal/domain/reservation"
)

type ReservationHandler struct {
	Service *reservations.Service
}

type createReservationRequest struct {
	ListingID string    `json:"listing_id" binding:"required"`
	GuestID   string    `json:"guest_id" binding:"required"`
	CheckIn   time.Time `json:"check_in" binding:"required"`
	CheckOut  time.Time `json:"check_out" binding:"required"`
	Guests    int       `json:"guests" binding:"required"`
	Plan      string    `json:"plan" binding:"required"`
	Method    string    `json:"remaining_payment_method"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Method == "" {
		req.Method = string(payment.MethodPlatform)
	}
	res, err := h.Service.RequestReservation(c.Request.Context(), reservations.RequestInput{
		ListingID: listings.ListingID(req.ListingID),
		GuestID:   req.GuestID,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		Guests:    req.Guests,
		Plan:      payment.PlanKind(req.Plan),
		Method:    payment.Method(req.Method),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapReservation(res, h.Service.Now()))
}

func (h ReservationHandler) Get(c *gin.Context) {
	res, err := h.Service.GetReservation(c.Request.Context(), reservation.ReservationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReservation(res, h.Service.Now()))
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h ReservationHandler) Approve(c *gin.Context) {
	h.applyTransition(c, reservation.EventHostApprove, reservations.TransitionPayload{Actor: actorID(c)})
}

func (h ReservationHandler) Decline(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.applyTransition(c, reservation.EventHostDecline, reservations.TransitionPayload{Actor: actorID(c), Reason: req.Reason})
}

type paymentRequest struct {
	Kind        string `json:"kind" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
}

// Payment records a capture result reported by the gateway integration.
// The engine never initiates capture.
func (h ReservationHandler) Payment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var event reservation.Event
	switch req.Kind {
	case "deposit":
		event = reservation.EventDepositPaid
	case "full":
		event = reservation.EventFullPaid
	case "remaining":
		event = reservation.EventRemainingPaid
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be deposit, full or remaining"})
		return
	}
	h.applyTransition(c, event, reservations.TransitionPayload{Actor: actorID(c), AmountCents: req.AmountCents})
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)
	h.applyTransition(c, reservation.EventCancel, reservations.TransitionPayload{Actor: actorID(c), Reason: req.Reason})
}

func (h ReservationHandler) Arrival(c *gin.Context) {
	h.applyTransition(c, reservation.EventArrival, reservations.TransitionPayload{Actor: actorID(c)})
}

func (h ReservationHandler) Complete(c *gin.Context) {
	h.applyTransition(c, reservation.EventComplete, reservations.TransitionPayload{Actor: actorID(c)})
}

func (h ReservationHandler) CancellationQuote(c *gin.Context) {
	quote, err := h.Service.ComputeCancellationQuote(c.Request.Context(), reservation.ReservationID(c.Param("id")), h.Service.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapRefundQuote(quote))
}

func (h ReservationHandler) ListByGuest(c *gin.Context) {
	items, err := h.Service.ListForGuest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.collection(items))
}

func (h ReservationHandler) ListByHost(c *gin.Context) {
	items, err := h.Service.ListForHost(c.Request.Context(), listings.HostID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.collection(items))
}

func (h ReservationHandler) applyTransition(c *gin.Context, event reservation.Event, payload reservations.TransitionPayload) {
	res, err := h.Service.ApplyTransition(c.Request.Context(), reservation.ReservationID(c.Param("id")), event, payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapReservation(res, h.Service.Now()))
}

func (h ReservationHandler) collection(items []*reservation.Reservation) gin.H {
	now := h.Service.Now()
	out := make([]dto.ReservationDTO, 0, len(items))
	for _, res := range items {
		out = append(out, dto.MapReservation(res, now))
	}
	return gin.H{"items": out}
}

// actorID identifies who triggered the transition. Authentication is an
// upstream concern; the gateway forwards the identity in a header.
func actorID(c *gin.Context) string {
	return c.GetHeader("X-Actor-ID")
}

var _ ReservationHTTP = ReservationHandler{}
