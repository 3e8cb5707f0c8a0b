package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dagkit/observability"
	"github.com/kbukum/dagkit/version"
)

// HealthChecker returns health reports for the components a deployment
// wires in. A nil checker means only the process itself is reported.
type HealthChecker func(ctx context.Context) []observability.Health

// healthResponse is a ServiceHealth with a probe timestamp.
type healthResponse struct {
	*observability.ServiceHealth
	Timestamp string `json:"timestamp"`
}

// Health returns the aggregate health handler. Component reports roll up
// through observability.ServiceHealth: one down component makes the whole
// service unhealthy (503), degraded components keep the response 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := observability.NewServiceHealth(serviceName, version.Short())
		if checker != nil {
			for _, component := range checker(c.Request.Context()) {
				report.AddComponent(component)
			}
		}

		code := http.StatusOK
		if report.Status == observability.HealthStatusDown {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, healthResponse{
			ServiceHealth: report,
			Timestamp:     probeTime(),
		})
	}
}

func probeTime() string {
	return time.Now().UTC().Format(time.RFC3339)
}
