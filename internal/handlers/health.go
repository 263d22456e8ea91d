package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"greeting/internal/models"
	"greeting/internal/version"
)

// Seuils mémoire en MB
const (
	bytesPerMB        = 1024 * 1024
	memoryDegradedMB  = 256
	memoryUnhealthyMB = 512
)

const (
	statusAlive        = "alive"
	statusReady        = "ready"
	statusNotReady     = "not_ready"
	checkConfiguration = "configuration"
	checkMemory        = "memory"
)

// HealthHandler gère les requêtes de santé du service
type HealthHandler struct {
	service   string
	letters   LetterProvider
	logger    *logrus.Logger
	startedAt time.Time

	// seuils mémoire en octets
	memoryDegraded  uint64
	memoryUnhealthy uint64
}

// NewHealthHandler crée un nouveau handler de santé
func NewHealthHandler(service string, letters LetterProvider, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		letters:   letters,
		logger:    logger,
		startedAt: time.Now(),

		memoryDegraded:  memoryDegradedMB * bytesPerMB,
		memoryUnhealthy: memoryUnhealthyMB * bytesPerMB,
	}
}

// HealthCheck effectue une vérification complète de la santé du service
// @Summary Vérification de santé
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /actuator/health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := models.HealthResponse{
		Service:   h.service,
		Version:   version.Version,
		Timestamp: time.Now(),
		Uptime:    time.Since(h.startedAt).String(),
		Checks: map[string]models.HealthCheck{
			checkConfiguration: h.checkConfiguration(),
			checkMemory:        h.checkMemory(),
		},
	}

	// Déterminer le statut global
	overallStatus := models.HealthStatusHealthy
	for _, check := range response.Checks {
		if check.Status == models.HealthStatusUnhealthy {
			overallStatus = models.HealthStatusUnhealthy
			break
		} else if check.Status == models.HealthStatusDegraded {
			overallStatus = models.HealthStatusDegraded
		}
	}
	response.Status = overallStatus

	entry := h.logger.WithFields(logrus.Fields{
		"status": overallStatus,
		"checks": response.Checks,
	})

	statusCode := http.StatusOK
	switch overallStatus {
	case models.HealthStatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
		entry.Error("Health check failed")
	case models.HealthStatusDegraded:
		entry.Warn("Health check degraded")
	default:
		entry.Debug("Health check completed")
	}

	c.JSON(statusCode, response)
}

// ReadinessCheck vérifie si le service est prêt à recevoir du traffic
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if check := h.checkConfiguration(); check.Status != models.HealthStatusHealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  statusNotReady,
			"reason":  checkConfiguration,
			"message": check.Message,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    statusReady,
		"service":   h.service,
		"timestamp": time.Now(),
	})
}

// LivenessCheck vérifie que le processus répond
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    statusAlive,
		"service":   h.service,
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startedAt).String(),
	})
}

func (h *HealthHandler) checkConfiguration() models.HealthCheck {
	if h.letters == nil || h.letters.Letter() == "" {
		return models.HealthCheck{
			Status:  models.HealthStatusUnhealthy,
			Message: "Greeting letter not configured",
		}
	}
	return models.HealthCheck{
		Status:  models.HealthStatusHealthy,
		Message: "Greeting letter loaded",
	}
}

func (h *HealthHandler) checkMemory() models.HealthCheck {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	check := models.HealthCheck{
		Status:  models.HealthStatusHealthy,
		Message: "Memory usage normal",
		Details: map[string]interface{}{
			"alloc_mb":   m.Alloc / bytesPerMB,
			"sys_mb":     m.Sys / bytesPerMB,
			"goroutines": runtime.NumGoroutine(),
		},
	}

	switch {
	case m.Alloc > h.memoryUnhealthy:
		check.Status = models.HealthStatusUnhealthy
		check.Message = "Critical memory usage"
	case m.Alloc > h.memoryDegraded:
		check.Status = models.HealthStatusDegraded
		check.Message = "High memory usage detected"
	}

	return check
}
