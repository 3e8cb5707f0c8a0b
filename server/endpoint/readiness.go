package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dagkit/observability"
)

// Readiness returns the readiness probe handler. A down component flips the
// response to 503 not_ready, which tells load balancers to stop routing
// here; degraded components do not affect readiness.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ready := true
		if checker != nil {
			for _, component := range checker(c.Request.Context()) {
				if component.Status == observability.HealthStatusDown {
					ready = false
					break
				}
			}
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": probeTime(),
		})
	}
}
