package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/saferoute-backend/internal/middleware"
	"github.com/smarttransit/saferoute-backend/internal/models"
	"github.com/smarttransit/saferoute-backend/internal/routing"
	"github.com/smarttransit/saferoute-backend/internal/services"
)

// RouteHandler handles HTTP requests for risk-weighted route queries
type RouteHandler struct {
	service *services.RoutingService
	logger  *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(service *services.RoutingService, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		service: service,
		logger:  logger,
	}
}

// FindRoute handles POST /api/v1/route
func (h *RouteHandler) FindRoute(c *gin.Context) {
	var req models.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid route request - JSON parsing failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request format",
			"error":   err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WithError(err).Warn("Validation error in route request")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	startTime := time.Now()
	outcome, err := h.service.Query(c.Request.Context(),
		req.Start.Lat, req.Start.Lon, req.Destination.Lat, req.Destination.Lon)
	if err != nil {
		h.respondLoadFailure(c, err)
		return
	}

	fields := logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"query_ms":   time.Since(startTime).Milliseconds(),
	}

	if !outcome.Found() {
		fields["reason"] = outcome.Reason
		h.logger.WithFields(fields).Info("No route found")
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "not_found",
			"reason":  outcome.Reason,
			"message": notFoundMessage(outcome.Reason),
		})
		return
	}

	fields["start_stop"] = outcome.Result.StartStop
	fields["end_stop"] = outcome.Result.EndStop
	fields["segments"] = len(outcome.Result.Segments)
	h.logger.WithFields(fields).Info("Route found")

	c.JSON(http.StatusOK, outcome.Result)
}

// Health handles GET /health
func (h *RouteHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health())
}

// Ready handles GET /ready. It succeeds once a graph is serving.
func (h *RouteHandler) Ready(c *gin.Context) {
	health := h.service.Health()
	if health.LoadedAt == nil {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

// ReloadGraph handles POST /api/v1/admin/graph/reload
func (h *RouteHandler) ReloadGraph(c *gin.Context) {
	adminCtx, _ := middleware.GetAdminContext(c)
	h.logger.WithFields(logrus.Fields{
		"operator":   adminCtx.Operator,
		"request_id": middleware.GetRequestID(c),
	}).Info("Manual graph reload requested")

	if err := h.service.Load(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Graph reload failed; the previous graph is still serving",
			"error":   err.Error(),
			"health":  h.service.Health(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "reloaded",
		"health": h.service.Health(),
	})
}

func (h *RouteHandler) respondLoadFailure(c *gin.Context, err error) {
	var integrityErr *routing.DataIntegrityError

	switch {
	case errors.Is(err, models.ErrUpstreamUnavailable):
		h.logger.WithError(err).Error("Route query failed - upstream network data unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Routing data is temporarily unavailable. Please try again later.",
			"code":    "UPSTREAM_UNAVAILABLE",
		})
	case errors.As(err, &integrityErr):
		h.logger.WithError(err).Error("Route query failed - inconsistent network data")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Routing data failed validation. Please try again later.",
			"code":    "DATA_INTEGRITY",
		})
	default:
		h.logger.WithError(err).Error("Route query failed - internal error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to compute route. Please try again later.",
		})
	}
}

func notFoundMessage(reason models.NotFoundReason) string {
	switch reason {
	case models.ReasonNoStops:
		return "No stops are loaded"
	case models.ReasonTooFar:
		return "Start or destination is too far from any stop"
	default:
		return "No route connects the nearest stops"
	}
}
