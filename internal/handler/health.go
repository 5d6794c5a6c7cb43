package handler

import (
	"net/http"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/pkg/circuit"
	"github.com/Payphone-Digital/openpayments/pkg/health"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	monitor  *health.Monitor
	breakers *circuit.Registry
}

type HealthCheckResponse struct {
	Status    string                        `json:"status"`
	Version   string                        `json:"version"`
	Timestamp time.Time                     `json:"timestamp"`
	Checks    map[string]health.CheckResult `json:"checks"`
	Breakers  map[string]circuit.Snapshot   `json:"breakers,omitempty"`
}

func NewHealthHandler(monitor *health.Monitor, breakers *circuit.Registry) *HealthHandler {
	return &HealthHandler{
		monitor:  monitor,
		breakers: breakers,
	}
}

// HealthCheck answers 503 only when a critical dependency (the database) is down.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, checks := h.monitor.CheckAll(c.Request.Context())

	response := HealthCheckResponse{
		Status:    status.String(),
		Version:   constants.AppVersion,
		Timestamp: time.Now(),
		Checks:    checks,
	}
	if h.breakers != nil {
		response.Breakers = h.breakers.Snapshots()
	}

	statusCode := http.StatusOK
	if status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}
