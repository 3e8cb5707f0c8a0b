package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Liveness returns the liveness probe handler. It answers 200 whenever the
// process can serve HTTP; component state does not factor in.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"timestamp": probeTime(),
		})
	}
}
