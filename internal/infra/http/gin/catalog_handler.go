package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/reservations"
	"stayhub/internal/domain/listings"
)

type CatalogHandler struct {
	Service *reservations.Service
}

func (h CatalogHandler) Calendar(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}
	booked, err := h.Service.ListingCalendar(c.Request.Context(), listings.ListingID(c.Param("id")), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapCalendar(c.Param("id"), booked))
}

func (h CatalogHandler) PricingQuote(c *gin.Context) {
	listingID := c.Query("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing_id is required"})
		return
	}
	checkIn, ok := parseDate(c, "check_in")
	if !ok {
		return
	}
	checkOut, ok := parseDate(c, "check_out")
	if !ok {
		return
	}
	breakdown, err := h.Service.PriceListing(c.Request.Context(), listings.ListingID(listingID), checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPriceBreakdown(breakdown))
}

func parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := parseDate(c, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseDate(c, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is required"})
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a YYYY-MM-DD date"})
		return time.Time{}, false
	}
	return t, true
}

var _ CatalogHTTP = CatalogHandler{}
