package handlers

import (
	"context"
	"net/http"

	"github.com/NomadCrew/feedback-desk/types"
	"github.com/gin-gonic/gin"
)

// HealthChecker is implemented by services.HealthService.
type HealthChecker interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

type HealthHandler struct {
	healthService HealthChecker
}

func NewHealthHandler(healthService HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// LivenessCheck godoc
// @Summary  Liveness check
// @Tags     health
// @Success  200
// @Router   /health/liveness [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck godoc
// @Summary  Readiness check
// @Description  503 while the feedback store is unreachable
// @Tags     health
// @Produce  json
// @Success  200  {object}  types.HealthCheck
// @Failure  503  {object}  types.HealthCheck
// @Router   /health/readiness [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// DetailedHealth godoc
// @Summary  Component health
// @Tags     health
// @Produce  json
// @Success  200  {object}  types.HealthCheck
// @Router   /health [get]
func (h *HealthHandler) DetailedHealth(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, health)
}
