package ginserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/reservations"
	"stayhub/internal/domain/cancellation"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newRouter(t *testing.T) (*gin.Engine, *fixedClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	listingRepo := memory.NewListingRepository()
	require.NoError(t, listingRepo.Save(context.Background(), &listings.Listing{
		ID: "lst-1", Host: "host-1", Title: "Ocean villa",
		MaxGuests: 4, NightlyRateCents: 100000, Currency: "USD", Active: true,
	}))

	clock := &fixedClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	service := reservations.NewService(
		memory.NewReservationRepository(),
		listingRepo,
		pricing.NewCalculator(pricing.DefaultFeeSchedule()),
		cancellation.DefaultPolicy(),
		clock,
		nil,
		slog.New(slog.DiscardHandler),
	)

	router := gin.New()
	handler := ginserver.ReservationHandler{Service: service}
	router.POST("/api/v1/reservations", handler.Create)
	router.GET("/api/v1/reservations/:id", handler.Get)
	router.POST("/api/v1/reservations/:id/approve", handler.Approve)
	router.POST("/api/v1/reservations/:id/decline", handler.Decline)
	router.POST("/api/v1/reservations/:id/payments", handler.Payment)
	router.POST("/api/v1/reservations/:id/cancel", handler.Cancel)
	router.POST("/api/v1/reservations/:id/arrival", handler.Arrival)
	router.POST("/api/v1/reservations/:id/complete", handler.Complete)
	router.GET("/api/v1/reservations/:id/cancellation-quote", handler.CancellationQuote)
	router.GET("/api/v1/guests/:id/reservations", handler.ListByGuest)
	return router, clock
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "actor-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createReservation(t *testing.T, router *gin.Engine, plan string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/v1/reservations", gin.H{
		"listing_id": "lst-1",
		"guest_id":   "guest-1",
		"check_in":   "2026-06-10T00:00:00Z",
		"check_out":  "2026-06-13T00:00:00Z",
		"guests":     2,
		"plan":       plan,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func TestCreateAndFetchReservation(t *testing.T) {
	router, _ := newRouter(t)
	id := createReservation(t, router, "deposit")

	rec := do(t, router, http.MethodGet, "/api/v1/reservations/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
		Price  struct {
			Total struct {
				Amount int64 `json:"amount"`
			} `json:"total"`
		} `json:"price"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, int64(371000), body.Price.Total.Amount)
}

func TestLifecycleOverHTTP(t *testing.T) {
	router, clock := newRouter(t)
	id := createReservation(t, router, "deposit")
	base := "/api/v1/reservations/" + id

	rec := do(t, router, http.MethodPost, base+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "deposit", "amount_cents": 185500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Status         string `json:"status"`
		PaymentDueDate string `json:"payment_due_date"`
		CanReview      bool   `json:"can_review"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "confirmed", body.Status)
	assert.Contains(t, body.PaymentDueDate, "2026-06-07")

	rec = do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "remaining", "amount_cents": 185500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	clock.now = time.Date(2026, 6, 10, 16, 0, 0, 0, time.UTC)
	rec = do(t, router, http.MethodPost, base+"/arrival", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	clock.now = time.Date(2026, 6, 13, 11, 0, 0, 0, time.UTC)
	rec = do(t, router, http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "completed", body.Status)
	assert.True(t, body.CanReview)
}

func TestErrorStatusMapping(t *testing.T) {
	router, _ := newRouter(t)
	id := createReservation(t, router, "deposit")
	base := "/api/v1/reservations/" + id

	t.Run("unknown reservation is 404", func(t *testing.T) {
		rec := do(t, router, http.MethodGet, "/api/v1/reservations/res-ghost", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("overlapping dates are 409", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/v1/reservations", gin.H{
			"listing_id": "lst-1",
			"guest_id":   "guest-2",
			"check_in":   "2026-06-12T00:00:00Z",
			"check_out":  "2026-06-15T00:00:00Z",
			"guests":     1,
			"plan":       "full",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("payment out of order is 422", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "remaining", "amount_cents": 185500})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("decline without reason is 400", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, base+"/decline", gin.H{"reason": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown payment kind is 400", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "tip", "amount_cents": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong amount is 422", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, base+"/approve", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "deposit", "amount_cents": 5})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, "expected")
	})
}

func TestCancellationQuoteEndpoint(t *testing.T) {
	router, _ := newRouter(t)
	id := createReservation(t, router, "full")
	base := "/api/v1/reservations/" + id

	rec := do(t, router, http.MethodPost, base+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, base+"/payments", gin.H{"kind": "full", "amount_cents": 371000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, base+"/cancellation-quote", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var quote struct {
		RefundPercent int `json:"refund_percent"`
		RefundAmount  struct {
			Amount int64 `json:"amount"`
		} `json:"refund_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 100, quote.RefundPercent)
	assert.Equal(t, int64(371000), quote.RefundAmount.Amount)
}

func TestListByGuestEnvelope(t *testing.T) {
	router, _ := newRouter(t)
	createReservation(t, router, "full")

	rec := do(t, router, http.MethodGet, "/api/v1/guests/guest-1/reservations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Items, 1)

	rec = do(t, router, http.MethodGet, "/api/v1/guests/nobody/reservations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Items, fmt.Sprintf("body: %s", rec.Body.String()))
}
