package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/dagkit/version"
)

var processStart = time.Now()

// Info returns a handler reporting build and runtime identity: version,
// commit, build time, Go toolchain, and process uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":    serviceName,
			"version":    v.Version,
			"commit":     v.Commit,
			"build_time": v.BuildTime,
			"go_version": v.GoVersion,
			"dirty":      v.Dirty,
			"uptime":     time.Since(processStart).Round(time.Second).String(),
			"timestamp":  probeTime(),
		})
	}
}
