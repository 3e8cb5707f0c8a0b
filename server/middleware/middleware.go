package middleware

import "net/http"

// Middleware is the standard http.Handler wrapper shape. Every middleware in
// this package has this type, so stacks compose with Chain.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares into one. Request flow follows list order: the
// first middleware sees the request first and the response last.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
