package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightroutes/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// DateLayout is the format of the date query parameter.
const DateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.GET("/flights/:id", h.get)
	router.GET("/segments", h.segment)
	router.GET("/segments/:id/miles", h.miles)
	router.GET("/airports", h.airports)
	router.GET("/healthz", h.health)
}

func (h *FlightHandler) list(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}

	var departure *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := time.ParseInLocation(DateLayout, raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
		departure = &d
	}

	c.JSON(http.StatusOK, h.service.FindFlights(c.Request.Context(), from, to, departure))
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, ok := h.service.GetFlight(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found"})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) segment(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		return
	}
	segment, ok := h.service.FindSegment(c.Request.Context(), from, to)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "segment not found"})
		return
	}
	c.JSON(http.StatusOK, segment)
}

func (h *FlightHandler) miles(c *gin.Context) {
	miles, ok := h.service.RewardMiles(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "segment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"miles": miles})
}

func (h *FlightHandler) airports(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListAirports(c.Request.Context()))
}

func (h *FlightHandler) health(c *gin.Context) {
	if err := h.service.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
