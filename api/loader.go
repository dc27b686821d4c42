package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightroutes/internal/service/loader"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type LoaderHandler struct {
	service loader.LoaderUseCase
	limiter *rate.Limiter
}

// NewLoaderHandler builds the loader endpoints. A nil limiter disables rate limiting
// of load and drop requests.
func NewLoaderHandler(service loader.LoaderUseCase, limiter *rate.Limiter) *LoaderHandler {
	return &LoaderHandler{service: service, limiter: limiter}
}

func (h *LoaderHandler) Register(router *gin.RouterGroup) {
	limited := RateLimit(h.limiter)
	router.POST("/load", limited, h.load)
	router.DELETE("/flights", limited, h.drop)
	router.GET("/query", h.query)
	router.GET("/status", h.status)
}

func (h *LoaderHandler) load(c *gin.Context) {
	days := h.service.DaysToLoad()
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
			return
		}
		days = n
	}

	// a started load runs to completion even if the client goes away
	summary, err := h.service.LoadFlightDB(context.WithoutCancel(c.Request.Context()), days)
	if err != nil {
		if errors.Is(err, loader.ErrLoadInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}
	c.String(http.StatusOK, summary)
}

func (h *LoaderHandler) drop(c *gin.Context) {
	if err := h.service.DropFlights(c.Request.Context()); err != nil {
		if errors.Is(err, loader.ErrLoadInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LoaderHandler) query(c *gin.Context) {
	c.String(http.StatusOK, strconv.Itoa(h.service.DaysToLoad()))
}

func (h *LoaderHandler) status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// RateLimit rejects requests with 429 once limiter runs dry.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
