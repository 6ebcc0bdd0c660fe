// Package server provides HTTP routing and middleware for the allplay web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
//   - [RequestID] tags every request with an id (X-Request-ID) and a request-scoped logger
//   - [Logging] records method, path, status and duration through charmbracelet/log
//   - [Recover] turns handler panics into 500 responses
//   - [Metrics.Middleware] records Prometheus request counters and latency histograms
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Server
//
// [Server] owns the [http.Server] lifecycle. [Server.Run] blocks until the context is cancelled and then
// shuts down gracefully.
package server
