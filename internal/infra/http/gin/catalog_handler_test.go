package ginserver_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
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

func newCatalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	listingRepo := memory.NewListingRepository()
	require.NoError(t, listingRepo.Save(context.Background(), &listings.Listing{
		ID: "lst-1", Host: "host-1", Title: "Ocean villa",
		MaxGuests: 4, NightlyRateCents: 100000, Currency: "USD", Active: true,
	}))

	service := reservations.NewService(
		memory.NewReservationRepository(),
		listingRepo,
		pricing.NewCalculator(pricing.DefaultFeeSchedule()),
		cancellation.DefaultPolicy(),
		&fixedClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)},
		nil,
		slog.New(slog.DiscardHandler),
	)

	router := gin.New()
	handler := ginserver.CatalogHandler{Service: service}
	router.GET("/api/v1/listings/:id/calendar", handler.Calendar)
	router.GET("/api/v1/pricing/quote", handler.PricingQuote)
	reservationHandler := ginserver.ReservationHandler{Service: service}
	router.POST("/api/v1/reservations", reservationHandler.Create)
	return router
}

func TestPricingQuoteEndpoint(t *testing.T) {
	router := newCatalogRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/pricing/quote?listing_id=lst-1&check_in=2026-06-10&check_out=2026-06-13", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Nights int `json:"nights"`
		Total  struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Nights)
	assert.Equal(t, int64(371000), body.Total.Amount)
	assert.Equal(t, "USD", body.Total.Currency)
}

func TestPricingQuoteRejectsBadParams(t *testing.T) {
	router := newCatalogRouter(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"missing listing", "/api/v1/pricing/quote?check_in=2026-06-10&check_out=2026-06-13", http.StatusBadRequest},
		{"missing check_out", "/api/v1/pricing/quote?listing_id=lst-1&check_in=2026-06-10", http.StatusBadRequest},
		{"malformed date", "/api/v1/pricing/quote?listing_id=lst-1&check_in=June-10&check_out=2026-06-13", http.StatusBadRequest},
		{"unknown listing", "/api/v1/pricing/quote?listing_id=lst-ghost&check_in=2026-06-10&check_out=2026-06-13", http.StatusNotFound},
		{"inverted range", "/api/v1/pricing/quote?listing_id=lst-1&check_in=2026-06-13&check_out=2026-06-10", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestCalendarEndpoint(t *testing.T) {
	router := newCatalogRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/reservations", gin.H{
		"listing_id": "lst-1",
		"guest_id":   "guest-1",
		"check_in":   "2026-06-10T00:00:00Z",
		"check_out":  "2026-06-13T00:00:00Z",
		"guests":     2,
		"plan":       "full",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/listings/lst-1/calendar?from=2026-06-01&to=2026-07-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ListingID string `json:"listing_id"`
		Booked    []struct {
			CheckIn string `json:"check_in"`
			Status  string `json:"status"`
		} `json:"booked"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "lst-1", body.ListingID)
	require.Len(t, body.Booked, 1)
	assert.Contains(t, body.Booked[0].CheckIn, "2026-06-10")
	assert.Equal(t, "pending", body.Booked[0].Status)

	// A window elsewhere in the year is empty, not an error.
	rec = do(t, router, http.MethodGet, "/api/v1/listings/lst-1/calendar?from=2026-08-01&to=2026-09-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Booked)
}
