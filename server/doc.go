// Package server provides the HTTP surface for a pipeline, backed by Gin
// with HTTP/2 cleartext support.
//
// # Middleware
//
// The standard stack (server/middleware) wraps every route at the handler
// level:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limit
//   - RequestLogger: per-request logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /alive, /ready, /info,
// /metrics. The pipeline API registers under /api/v1: node and edge
// mutations, execute, graph export and load, frame access.
package server
