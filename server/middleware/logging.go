package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/dagkit/logger"
)

// probePaths are excluded from request logging.
var probePaths = map[string]struct{}{
	"/health":  {},
	"/alive":   {},
	"/ready":   {},
	"/metrics": {},
}

// RequestLogger returns middleware logging one entry per request with
// method, path, status, response size and duration. The level follows the
// status code: 5xx at error, 4xx at warn, everything else at debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := probePaths[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, sw.status,
				"bytes", sw.written,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields["request_id"] = id
			}

			switch {
			case sw.status >= http.StatusInternalServerError:
				log.Error("request completed", fields)
			case sw.status >= http.StatusBadRequest:
				log.Warn("request completed", fields)
			default:
				log.Debug("request completed", fields)
			}
		})
	}
}
