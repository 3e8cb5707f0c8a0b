package middleware

import (
	"net/http"

	"github.com/kbukum/dagkit/util"
)

const defaultMaxBodySize = 10 << 20

// BodySizeLimit returns middleware capping the request body at maxSize
// (a string like "10MB" or "512KB"). Reads past the cap fail, and the
// connection is closed after the response.
func BodySizeLimit(maxSize string) Middleware {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
